package logging

import (
	"context"
	"trade_ledger/internal/modules/config"
	"trade_ledger/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("logging",
		fx.Provide(
			func(cfg *config.Config) (*zap.Logger, error) {
				logger.SetServiceName(cfg.Tracing.ServiceName)
				return logger.New(cfg.Log.Level, cfg.Log.Dev)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, l *zap.Logger) {
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					_ = l.Sync() // на stderr Sync часто возвращает EINVAL
					return nil
				},
			})
		}),
	)
}
