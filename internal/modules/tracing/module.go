package tracing

import (
	"context"
	"trade_ledger/internal/modules/config"
	"trade_ledger/pkg/tracing"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module поднимает jaeger-трейсер, если он включён в конфиге.
func Module() fx.Option {
	return fx.Module("tracing",
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) {
			if !cfg.Tracing.Enabled {
				log.Debug("tracing disabled")
				return
			}
			var closeFn func()
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					tracing.SetServiceName(cfg.Tracing.ServiceName)
					_, closer, err := tracing.InitTracer(tracing.Config{
						Host: cfg.Tracing.Host,
						Port: cfg.Tracing.Port,
					})
					if err != nil {
						return err
					}
					closeFn = closer
					log.Info("tracing enabled",
						zap.String("agent", cfg.Tracing.Host),
						zap.Int("port", cfg.Tracing.Port),
					)
					return nil
				},
				OnStop: func(context.Context) error {
					if closeFn != nil {
						closeFn()
					}
					return nil
				},
			})
		}),
	)
}
