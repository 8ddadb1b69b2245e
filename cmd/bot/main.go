package main

import (
	"context"
	"trade_ledger/internal/modules/api"
	"trade_ledger/internal/modules/bootstrap"
	"trade_ledger/internal/modules/clob"
	"trade_ledger/internal/modules/config"
	"trade_ledger/internal/modules/health"
	"trade_ledger/internal/modules/ingest"
	"trade_ledger/internal/modules/ledger"
	"trade_ledger/internal/modules/logging"
	"trade_ledger/internal/modules/postgres"
	"trade_ledger/internal/modules/tracing"
	"trade_ledger/internal/modules/tradestore"

	telegram "trade_ledger/internal/modules/telegram_bot"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		config.Module(),
		logging.Module(),
		tracing.Module(),
		postgres.Module(),
		tradestore.Module(),
		clob.Module(),
		health.Module(),
		ledger.Module(),
		ingest.Module(),
		bootstrap.Module(),
		api.Module(),
		telegram.Module(),
	)
	app.Run()
}
