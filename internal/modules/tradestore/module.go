package tradestore

import (
	"context"
	ledgersvc "trade_ledger/internal/modules/ledger/service"
	"trade_ledger/internal/modules/tradestore/service"
	"trade_ledger/pkg/db"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module: история сделок в Postgres; отдаёт её ledger как TradeSource.
func Module() fx.Option {
	return fx.Module("tradestore",
		fx.Provide(
			func(tx db.TxManager, log *zap.Logger) *service.Store {
				return service.NewStore(tx, log)
			},
			func(s *service.Store) ledgersvc.TradeSource { return s },
		),
		fx.Invoke(func(lc fx.Lifecycle, s *service.Store, log *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					if err := s.Init(ctx); err != nil {
						return err
					}
					log.Info("trades schema ready")
					return nil
				},
			})
		}),
	)
}
