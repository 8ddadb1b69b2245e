package service

import (
	"context"
	"fmt"
	"trade_ledger/internal/models"
	"trade_ledger/internal/modules/config"
	ledgersvc "trade_ledger/internal/modules/ledger/service"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Snapshotter interface {
	Snapshot(ctx context.Context, opts ledgersvc.Options, fresh bool) (models.Snapshot, error)
	Defaults() ledgersvc.Options
}

// Telegram
type Telegram struct {
	bot       *tgbot.BotAPI
	cfg       *config.Config
	ledger    Snapshotter
	watchlist *Watchlist
	log       *zap.Logger
}

func NewTelegram(cfg *config.Config, ledger Snapshotter, log *zap.Logger) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}

	return &Telegram{
		bot:       b,
		cfg:       cfg,
		ledger:    ledger,
		watchlist: NewWatchlist(),
		log:       log.Named("telegram"),
	}, nil
}

func (t *Telegram) Send(_ context.Context, chatID int64, msg string) (tgbot.Message, error) {
	return t.bot.Send(tgbot.NewMessage(chatID, msg))
}

func (t *Telegram) SendF(ctx context.Context, chatID int64, format string, args ...any) (tgbot.Message, error) {
	return t.Send(ctx, chatID, fmt.Sprintf(format, args...))
}

func (t *Telegram) SendMessage(_ context.Context, message tgbot.MessageConfig) (tgbot.Message, error) {
	return t.bot.Send(message)
}

// Start: цикл long polling, блокирует до Stop или отмены ctx.
func (t *Telegram) Start(ctx context.Context) {
	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	t.log.Info("telegram bot started", zap.String("user", t.bot.Self.UserName))
	if t.cfg.Telegram.ChatID != 0 {
		if _, err := t.Send(ctx, t.cfg.Telegram.ChatID, "🟢 trade-ledger запущен. /positions — открытые позиции"); err != nil {
			t.log.Warn("startup message", zap.Error(err))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.handleUpdate(ctx, update)
		}
	}
}

func (t *Telegram) Stop() {
	t.bot.StopReceivingUpdates()
}
