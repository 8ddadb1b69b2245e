package ledger

import (
	"context"
	"trade_ledger/internal/modules/config"
	"trade_ledger/internal/modules/ledger/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module: расчёт позиций. Источники сделок и цен (service.TradeSource,
// service.PriceSource) и service.Observer должны прийти из других модулей.
func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(
			service.NewService,
			func(cfg *config.Config) (*service.SnapshotCache, error) {
				return service.NewSnapshotCache(cfg.Cache.MaxCost, cfg.Cache.TTL)
			},
			service.NewSnapshotter,
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, s *service.Snapshotter, c *service.SnapshotCache, log *zap.Logger) {
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					if cfg.Cache.RefreshInterval > 0 {
						log.Info("snapshot refresh worker started", zap.Duration("interval", cfg.Cache.RefreshInterval))
						go s.RefreshWorker(ctx, cfg.Cache.RefreshInterval)
					}
					return nil
				},
				OnStop: func(_ context.Context) error {
					cancel()
					c.Close()
					return nil
				},
			})
		}),
	)
}
