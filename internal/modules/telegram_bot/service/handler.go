package service

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const cbRefresh = "POS::REFRESH"

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// 1) Команды
	if msg := update.Message; msg != nil {
		if !msg.IsCommand() {
			return
		}
		chatID := msg.Chat.ID
		text, withRefresh := t.reply(ctx, chatID, msg.Command(), msg.CommandArguments())
		t.sendReply(ctx, chatID, text, withRefresh)
		return
	}

	// 2) Inline-кнопка «обновить»
	if cb := update.CallbackQuery; cb != nil {
		if cb.Message == nil || cb.Message.Chat == nil {
			return
		}
		_, _ = t.bot.Request(tgbotapi.NewCallback(cb.ID, ""))
		if cb.Data != cbRefresh {
			return
		}
		chatID := cb.Message.Chat.ID
		text := t.positionsReply(ctx, chatID, "", true)
		edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, text)
		edit.ParseMode = tgbotapi.ModeMarkdown
		kb := refreshKeyboard()
		edit.ReplyMarkup = &kb
		if _, err := t.bot.Request(edit); err != nil {
			t.log.Warn("edit positions message", zap.Error(err))
		}
	}
}

// reply: текст ответа на команду и нужна ли кнопка «обновить».
func (t *Telegram) reply(ctx context.Context, chatID int64, cmd, args string) (string, bool) {
	switch cmd {
	case "start", "help":
		return formatHelp(), false
	case "positions":
		return t.positionsReply(ctx, chatID, args, false), true
	case "refresh":
		return t.positionsReply(ctx, chatID, args, true), true
	case "watch":
		ids := splitIDs(args)
		if len(ids) == 0 {
			return "Формат: /watch `id1 id2`", false
		}
		t.watchlist.Set(chatID, ids)
		return "👀 Фильтр: `" + strings.Join(t.watchlist.Get(chatID), ", ") + "`", false
	case "unwatch":
		t.watchlist.Clear(chatID)
		return "Фильтр сброшен", false
	default:
		return "Неизвестная команда. /help", false
	}
}

func (t *Telegram) positionsReply(ctx context.Context, chatID int64, args string, fresh bool) string {
	opts := t.ledger.Defaults()

	filter := splitIDs(args)
	if len(filter) == 0 {
		filter = t.watchlist.Get(chatID)
	}
	if len(filter) > 0 {
		opts.AssetIDs = filter
	}

	snap, err := t.ledger.Snapshot(ctx, opts, fresh)
	if err != nil {
		t.log.Error("snapshot for telegram", zap.Int64("chat_id", chatID), zap.Error(err))
		return "❗️ Ошибка получения позиций: " + err.Error()
	}
	return formatSnapshot(snap, filter)
}

func (t *Telegram) sendReply(ctx context.Context, chatID int64, text string, withRefresh bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if withRefresh {
		msg.ReplyMarkup = refreshKeyboard()
	}
	if _, err := t.SendMessage(ctx, msg); err != nil {
		t.log.Warn("send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func refreshKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Обновить", cbRefresh),
		),
	)
}
