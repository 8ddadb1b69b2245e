package service

import (
	"context"
	"sync"
	"time"
	"trade_ledger/internal/models"

	"go.uber.org/zap"
)

// Observer получает уведомление после каждого успешного прохода (health и т.п.).
type Observer interface {
	SnapshotDone(at time.Time, stats models.PassStats)
}

// RefreshListener получает каждый снапшот фонового пересчёта (с дефолтными опциями).
type RefreshListener interface {
	Refreshed(ctx context.Context, snap models.Snapshot)
}

// Snapshotter связывает Service с конкретными источниками из DI и кэширует результат.
type Snapshotter struct {
	svc    *Service
	trades TradeSource
	prices PriceSource
	cache  *SnapshotCache
	obs    Observer
	log    *zap.Logger

	mu        sync.RWMutex
	last      models.Snapshot
	lastAt    time.Time
	listeners []RefreshListener
}

func NewSnapshotter(svc *Service, trades TradeSource, prices PriceSource, cache *SnapshotCache, obs Observer, log *zap.Logger) *Snapshotter {
	return &Snapshotter{
		svc:    svc,
		trades: trades,
		prices: prices,
		cache:  cache,
		obs:    obs,
		log:    log.Named("snapshotter"),
	}
}

func (s *Snapshotter) Defaults() Options { return s.svc.Defaults() }

// Snapshot отдаёт снапшот из кэша или считает новый. fresh=true идёт мимо кэша.
func (s *Snapshotter) Snapshot(ctx context.Context, opts Options, fresh bool) (models.Snapshot, error) {
	if !fresh && s.cache != nil {
		if snap, ok := s.cache.Get(opts); ok {
			return snap, nil
		}
	}

	snap, err := s.svc.Snapshot(ctx, s.trades, s.prices, opts)
	if err != nil {
		return models.Snapshot{}, err
	}

	now := time.Now()
	if s.cache != nil {
		s.cache.Set(opts, snap)
	}
	s.mu.Lock()
	s.last, s.lastAt = snap, now
	s.mu.Unlock()
	if s.obs != nil {
		s.obs.SnapshotDone(now, snap.Stats)
	}
	return snap, nil
}

// Last: последний успешно посчитанный снапшот.
func (s *Snapshotter) Last() (models.Snapshot, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.lastAt, !s.lastAt.IsZero()
}

// RefreshWorker периодически пересчитывает снапшот с дефолтными опциями.
func (s *Snapshotter) RefreshWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.refresh(ctx) // сразу при старте

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Snapshotter) Subscribe(l RefreshListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Snapshotter) refresh(ctx context.Context) {
	snap, err := s.Snapshot(ctx, s.Defaults(), true)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error("refresh snapshot", zap.Error(err))
		}
		return
	}

	s.mu.RLock()
	listeners := append([]RefreshListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, l := range listeners {
		l.Refreshed(ctx, snap)
	}
}
