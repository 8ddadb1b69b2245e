package service

import (
	"sync/atomic"
	"time"
	"trade_ledger/internal/models"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	snapshots        atomic.Int64
	lastSnapshotUnix atomic.Int64 // unix seconds
	lastStats        atomic.Pointer[models.PassStats]
}

func NewState() *State {
	return &State{startedAt: time.Now()}
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// SnapshotDone вызывается ledger после каждого удачного прохода.
func (s *State) SnapshotDone(at time.Time, stats models.PassStats) {
	s.snapshots.Add(1)
	s.lastSnapshotUnix.Store(at.Unix())
	s.lastStats.Store(&stats)
}

func (s *State) Snapshots() int64 { return s.snapshots.Load() }

func (s *State) LastSnapshot() time.Time {
	u := s.lastSnapshotUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) LastStats() (models.PassStats, bool) {
	p := s.lastStats.Load()
	if p == nil {
		return models.PassStats{}, false
	}
	return *p, true
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
