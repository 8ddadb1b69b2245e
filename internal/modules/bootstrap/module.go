package bootstrap

import (
	"context"
	bootstrap "trade_ledger/internal/modules/bootstrap/service"
	"trade_ledger/internal/modules/config"
	ledgersvc "trade_ledger/internal/modules/ledger/service"
	tradestore "trade_ledger/internal/modules/tradestore/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			func(store *tradestore.Store, s *ledgersvc.Snapshotter, cfg *config.Config, log *zap.Logger) *bootstrap.Warmuper {
				return bootstrap.NewWarmuper(store, s, cfg, log)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, wu *bootstrap.Warmuper, log *zap.Logger) {
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						if err := wu.Warmup(ctx); err != nil && ctx.Err() == nil {
							log.Error("warmup error", zap.Error(err))
							return
						}
						log.Info("warmup done")
					}()
					return nil
				},
				OnStop: func(_ context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}
