package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
	"trade_ledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingObserver struct {
	calls atomic.Int32
	last  atomic.Int64
}

func (o *countingObserver) SnapshotDone(at time.Time, _ models.PassStats) {
	o.calls.Add(1)
	o.last.Store(at.Unix())
}

func TestSnapshotCache(t *testing.T) {
	c, err := NewSnapshotCache(100, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	opts := Options{MaxFills: 10, MaxPages: 1, AssetIDs: []string{"b", "a"}}
	c.Set(opts, models.Snapshot{RunID: "run-1"})
	c.Wait()

	swapped := opts
	swapped.AssetIDs = []string{"a", "b"}
	got, ok := c.Get(swapped)
	require.True(t, ok)
	assert.Equal(t, "run-1", got.RunID)

	other := opts
	other.IncludePrices = true
	_, ok = c.Get(other)
	assert.False(t, ok)
}

func TestSnapshotCache_ZeroTTLDisables(t *testing.T) {
	c, err := NewSnapshotCache(100, 0)
	require.NoError(t, err)
	defer c.Close()

	c.Set(Options{}, models.Snapshot{RunID: "run-1"})
	c.Wait()
	_, ok := c.Get(Options{})
	assert.False(t, ok)
}

func TestSnapshotter_UsesCache(t *testing.T) {
	var fetches atomic.Int32
	mem := NewMemorySource([]models.RawTrade{trade("a", "m", "BUY", "0.5", "2")}, nil)
	trades := TradeSourceFunc(func(ctx context.Context, cursor string, limit int) (models.TradePage, error) {
		fetches.Add(1)
		return mem.FetchTrades(ctx, cursor, limit)
	})

	cache, err := NewSnapshotCache(100, time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	obs := &countingObserver{}
	s := NewSnapshotter(newTestService(t), trades, mem, cache, obs, zaptest.NewLogger(t))

	_, _, ok := s.Last()
	assert.False(t, ok)

	first, err := s.Snapshot(context.Background(), s.Defaults(), false)
	require.NoError(t, err)
	require.Len(t, first.Positions, 1)
	cache.Wait()

	second, err := s.Snapshot(context.Background(), s.Defaults(), false)
	require.NoError(t, err)
	assert.Equal(t, first.RunID, second.RunID)
	assert.EqualValues(t, 1, fetches.Load())

	third, err := s.Snapshot(context.Background(), s.Defaults(), true)
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, third.RunID)
	assert.EqualValues(t, 2, fetches.Load())
	assert.EqualValues(t, 2, obs.calls.Load())

	last, at, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, third.RunID, last.RunID)
	assert.False(t, at.IsZero())
}

func TestSnapshotter_RefreshWorkerStopsOnCancel(t *testing.T) {
	obs := &countingObserver{}
	mem := NewMemorySource([]models.RawTrade{trade("a", "m", "BUY", "0.5", "2")}, nil)
	s := NewSnapshotter(newTestService(t), mem, mem, nil, obs, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RefreshWorker(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return obs.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

type chanListener chan models.Snapshot

func (l chanListener) Refreshed(_ context.Context, snap models.Snapshot) {
	select {
	case l <- snap:
	default:
	}
}

func TestSnapshotter_RefreshNotifiesListeners(t *testing.T) {
	mem := NewMemorySource([]models.RawTrade{trade("a", "m", "BUY", "0.5", "2")}, nil)
	s := NewSnapshotter(newTestService(t), mem, mem, nil, nil, zaptest.NewLogger(t))

	l := make(chanListener, 1)
	s.Subscribe(l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.RefreshWorker(ctx, time.Hour)

	select {
	case snap := <-l:
		require.Len(t, snap.Positions, 1)
		assert.Equal(t, "2.000000", snap.Positions[0].Size)
	case <-time.After(time.Second):
		t.Fatal("listener not called")
	}
}
