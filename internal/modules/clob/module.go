package clob

import (
	"trade_ledger/internal/modules/clob/service"
	"trade_ledger/internal/modules/config"
	ledgersvc "trade_ledger/internal/modules/ledger/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module: публичный CLOB как источник котировок для ledger.
func Module() fx.Option {
	return fx.Module("clob",
		fx.Provide(
			func(cfg *config.Config, log *zap.Logger) *service.Client {
				return service.NewClient(cfg.Clob.BaseURL, cfg.Clob.Timeout, log)
			},
			func(c *service.Client) ledgersvc.PriceSource { return c },
		),
	)
}
