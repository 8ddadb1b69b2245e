package service

import (
	"context"
	"fmt"
	"trade_ledger/internal/models"
	"trade_ledger/internal/modules/config"
	ledgersvc "trade_ledger/internal/modules/ledger/service"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

const seedBatch = 200

type Importer interface {
	SaveBatch(ctx context.Context, trades []models.IncomingTrade) (int, error)
}

type Primer interface {
	Snapshot(ctx context.Context, opts ledgersvc.Options, fresh bool) (models.Snapshot, error)
	Defaults() ledgersvc.Options
}

// Warmuper делает стартовую подготовку: заливку истории из seed-файла и первый снапшот в кэш.
type Warmuper struct {
	store  Importer
	ledger Primer
	cfg    *config.Config
	log    *zap.Logger
}

func NewWarmuper(store Importer, ledger Primer, cfg *config.Config, log *zap.Logger) *Warmuper {
	return &Warmuper{store: store, ledger: ledger, cfg: cfg, log: log.Named("bootstrap")}
}

func (w *Warmuper) Warmup(ctx context.Context) error {
	if path := w.cfg.Bootstrap.SeedFile; path != "" {
		n, err := w.Seed(ctx, path)
		if err != nil {
			return err
		}
		w.log.Info("seed imported", zap.String("file", path), zap.Int("new", n))
	}

	if !w.cfg.Bootstrap.WarmCache {
		return nil
	}
	snap, err := w.ledger.Snapshot(ctx, w.ledger.Defaults(), true)
	if err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}
	w.log.Info("cache warmed", zap.String("run_id", snap.RunID), zap.Int("positions", len(snap.Positions)))
	return nil
}

// Seed перекладывает сделки из yaml/json файла в хранилище пачками.
func (w *Warmuper) Seed(ctx context.Context, path string) (int, error) {
	src, err := ledgersvc.LoadFileSource(path)
	if err != nil {
		return 0, err
	}

	total := 0
	batch := make([]models.IncomingTrade, 0, seedBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := w.store.SaveBatch(ctx, batch)
		if err != nil {
			return err
		}
		total += n
		batch = batch[:0]
		return nil
	}

	for i, rec := range src.Records() {
		raw, err := sonic.Marshal(normalizeKeys(rec))
		if err != nil {
			return total, fmt.Errorf("seed record %d: %w", i, err)
		}
		batch = append(batch, models.IncomingTrade{Origin: SeedOrigin(path, i), Raw: raw})
		if len(batch) == seedBatch {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	return total, flush()
}

// SeedOrigin: файл и номер записи в нём. Повторная заливка того же файла не дублирует сделки.
func SeedOrigin(path string, i int) string {
	return fmt.Sprintf("seed:%s#%d", path, i)
}

// yaml.v2 отдаёт вложенные map как map[interface{}]interface{}, json такое не умеет.
func normalizeKeys(v any) any {
	switch x := v.(type) {
	case models.RawTrade:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalizeKeys(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = normalizeKeys(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = normalizeKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalizeKeys(val)
		}
		return out
	default:
		return v
	}
}
