package service

import (
	"sort"
	"sync"
)

// Watchlist: фильтр asset по чатам. Живёт в памяти, после рестарта пустой.
type Watchlist struct {
	mu   sync.RWMutex
	data map[int64][]string
}

func NewWatchlist() *Watchlist {
	return &Watchlist{data: make(map[int64][]string)}
}

func (w *Watchlist) Set(chatID int64, ids []string) {
	uniq := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := uniq[id]; ok || id == "" {
			continue
		}
		uniq[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(out) == 0 {
		delete(w.data, chatID)
		return
	}
	w.data[chatID] = out
}

func (w *Watchlist) Clear(chatID int64) { w.Set(chatID, nil) }

func (w *Watchlist) Get(chatID int64) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.data[chatID]...)
}
