package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"trade_ledger/internal/models"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Sender interface {
	SendMessage(ctx context.Context, message tgbot.MessageConfig) (tgbot.Message, error)
}

type ChangeKind int

const (
	Opened ChangeKind = iota + 1
	Closed
	Resized
)

type Change struct {
	Kind ChangeKind
	Prev models.Position
	Next models.Position
}

// Notifier шлёт в чат разницу между соседними снапшотами
// фонового пересчёта. Первый снапшот только запоминается.
type Notifier struct {
	sender Sender
	chatID int64
	log    *zap.Logger

	mu     sync.Mutex
	last   map[string]models.Position
	primed bool
}

func NewNotifier(sender Sender, chatID int64, log *zap.Logger) *Notifier {
	return &Notifier{sender: sender, chatID: chatID, log: log.Named("notify")}
}

func (n *Notifier) Refreshed(ctx context.Context, snap models.Snapshot) {
	n.mu.Lock()
	prev, primed := n.last, n.primed
	n.last = index(snap.Positions)
	n.primed = true
	n.mu.Unlock()

	if !primed {
		return
	}
	changes := Diff(prev, snap.Positions)
	if len(changes) == 0 {
		return
	}

	msg := tgbot.NewMessage(n.chatID, Format(changes))
	msg.ParseMode = tgbot.ModeMarkdown
	if _, err := n.sender.SendMessage(ctx, msg); err != nil {
		n.log.Warn("send position changes", zap.Error(err))
	}
}

func index(ps []models.Position) map[string]models.Position {
	m := make(map[string]models.Position, len(ps))
	for _, p := range ps {
		m[p.AssetID] = p
	}
	return m
}

// Diff: сначала открытые/изменённые в порядке next, потом закрытые в порядке prev-ключей.
func Diff(prev map[string]models.Position, next []models.Position) []Change {
	var out []Change
	seen := make(map[string]struct{}, len(next))
	for _, p := range next {
		seen[p.AssetID] = struct{}{}
		old, ok := prev[p.AssetID]
		switch {
		case !ok:
			out = append(out, Change{Kind: Opened, Next: p})
		case old.Size != p.Size:
			out = append(out, Change{Kind: Resized, Prev: old, Next: p})
		}
	}

	var closed []string
	for id := range prev {
		if _, ok := seen[id]; !ok {
			closed = append(closed, id)
		}
	}
	sort.Strings(closed)
	for _, id := range closed {
		out = append(out, Change{Kind: Closed, Prev: prev[id]})
	}
	return out
}

func Format(changes []Change) string {
	var b strings.Builder
	b.WriteString("*🔔 Изменения позиций*\n")
	for _, c := range changes {
		switch c.Kind {
		case Opened:
			fmt.Fprintf(&b, "➕ `%s` `%s` @ `%s`\n", c.Next.AssetID, c.Next.Size, c.Next.AveragePrice)
		case Resized:
			fmt.Fprintf(&b, "✏️ `%s` `%s` → `%s`\n", c.Next.AssetID, c.Prev.Size, c.Next.Size)
		case Closed:
			fmt.Fprintf(&b, "✖️ `%s` закрыта (было `%s`)\n", c.Prev.AssetID, c.Prev.Size)
		}
	}
	return b.String()
}
