package notify

import (
	"context"
	"testing"
	"trade_ledger/internal/models"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSender struct{ sent []tgbot.MessageConfig }

func (f *fakeSender) SendMessage(_ context.Context, m tgbot.MessageConfig) (tgbot.Message, error) {
	f.sent = append(f.sent, m)
	return tgbot.Message{}, nil
}

func pos(asset, size string) models.Position {
	return models.Position{AssetID: asset, Size: size, AveragePrice: "0.500000"}
}

func TestDiff(t *testing.T) {
	prev := index([]models.Position{pos("a", "1.000000"), pos("b", "2.000000"), pos("z", "3.000000"), pos("y", "1.000000")})
	next := []models.Position{pos("b", "-2.000000"), pos("a", "1.000000"), pos("c", "5.000000")}

	got := Diff(prev, next)
	require.Len(t, got, 4)
	assert.Equal(t, Resized, got[0].Kind)
	assert.Equal(t, "b", got[0].Next.AssetID)
	assert.Equal(t, Opened, got[1].Kind)
	assert.Equal(t, "c", got[1].Next.AssetID)
	assert.Equal(t, Closed, got[2].Kind)
	assert.Equal(t, "y", got[2].Prev.AssetID)
	assert.Equal(t, "z", got[3].Prev.AssetID)
}

func TestNotifier_Refreshed(t *testing.T) {
	s := &fakeSender{}
	n := NewNotifier(s, 42, zaptest.NewLogger(t))
	ctx := context.Background()

	n.Refreshed(ctx, models.Snapshot{Positions: []models.Position{pos("a", "1.000000")}})
	assert.Empty(t, s.sent, "first snapshot only primes")

	n.Refreshed(ctx, models.Snapshot{Positions: []models.Position{pos("a", "1.000000")}})
	assert.Empty(t, s.sent)

	n.Refreshed(ctx, models.Snapshot{Positions: []models.Position{pos("a", "3.000000")}})
	require.Len(t, s.sent, 1)
	assert.EqualValues(t, 42, s.sent[0].ChatID)
	assert.Contains(t, s.sent[0].Text, "`1.000000` → `3.000000`")

	n.Refreshed(ctx, models.Snapshot{})
	require.Len(t, s.sent, 2)
	assert.Contains(t, s.sent[1].Text, "`a` закрыта")
}
