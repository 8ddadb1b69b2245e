package postgres

import (
	"context"
	"fmt"
	"trade_ledger/internal/modules/config"
	"trade_ledger/pkg/db"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module: пул к Postgres. Закрывается на остановке приложения.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*db.PgTxManager, error) {
				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN:      cfg.DB,
					MaxConns: cfg.DBMaxConns,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				if err = poolMaster.Ping(ctx); err != nil {
					poolMaster.Close()
					return nil, fmt.Errorf("ping postgres: %w", err)
				}
				log.Info("postgres connected")

				m := db.NewPgTxManager(poolMaster)
				lc.Append(fx.StopHook(m.Close))
				return m, nil
			},
			func(m *db.PgTxManager) db.TxManager { return m },
		),
	)
}
