package service

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"trade_ledger/internal/models"

	"github.com/dgraph-io/ristretto"
)

// SnapshotCache: готовые снапшоты по ключу опций, с TTL.
type SnapshotCache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

func NewSnapshotCache(maxCost int64, ttl time.Duration) (*SnapshotCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &SnapshotCache{c: c, ttl: ttl}, nil
}

func (c *SnapshotCache) Get(opts Options) (models.Snapshot, bool) {
	v, ok := c.c.Get(CacheKey(opts))
	if !ok {
		return models.Snapshot{}, false
	}
	snap, ok := v.(models.Snapshot)
	return snap, ok
}

func (c *SnapshotCache) Set(opts Options, snap models.Snapshot) {
	if c.ttl <= 0 {
		return
	}
	c.c.SetWithTTL(CacheKey(opts), snap, 1, c.ttl)
}

// Wait дожидается применения буферизованных Set.
func (c *SnapshotCache) Wait() { c.c.Wait() }

func (c *SnapshotCache) Close() { c.c.Close() }

// CacheKey не зависит от порядка AssetIDs.
func CacheKey(o Options) string {
	ids := append([]string(nil), o.AssetIDs...)
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString(strconv.Itoa(o.MaxFills))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(o.MaxPages))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(o.IncludePrices))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(o.PriceLookupLimit))
	b.WriteByte('|')
	b.WriteString(strings.Join(ids, ","))
	return b.String()
}
