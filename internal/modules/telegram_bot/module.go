package telegram

import (
	"context"
	"trade_ledger/internal/modules/config"
	ledgersvc "trade_ledger/internal/modules/ledger/service"
	"trade_ledger/internal/modules/telegram_bot/service"
	"trade_ledger/internal/notify"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module: бот с командой /positions. Без токена не стартует.
// С chat_id ещё и присылает изменения позиций после фонового пересчёта.
func Module() fx.Option {
	return fx.Module("telegram",
		fx.Invoke(
			func(lc fx.Lifecycle, cfg *config.Config, s *ledgersvc.Snapshotter, log *zap.Logger) error {
				if cfg.Telegram.Token == "" {
					log.Info("telegram disabled: no token")
					return nil
				}
				t, err := service.NewTelegram(cfg, s, log)
				if err != nil {
					return err
				}
				if cfg.Telegram.ChatID != 0 {
					s.Subscribe(notify.NewNotifier(t, cfg.Telegram.ChatID, log))
				}

				ctx, cancel := context.WithCancel(context.Background())
				lc.Append(fx.Hook{
					OnStart: func(_ context.Context) error {
						go t.Start(ctx)
						return nil
					},
					OnStop: func(_ context.Context) error {
						cancel()
						t.Stop()
						return nil
					},
				})
				return nil
			},
		),
	)
}
