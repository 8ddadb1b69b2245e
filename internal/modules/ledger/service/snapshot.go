package service

import (
	"context"
	"trade_ledger/internal/helper"
	"trade_ledger/internal/models"
	"trade_ledger/internal/modules/config"
	"trade_ledger/pkg/tracing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service считает снапшот позиций по истории сделок.
// Состояния между вызовами не держит: каждый проход начинается с нуля.
type Service struct {
	log      *zap.Logger
	defaults Options
}

func NewService(cfg *config.Config, log *zap.Logger) *Service {
	return &Service{
		log:      log.Named("ledger"),
		defaults: OptionsFromConfig(cfg.Ledger),
	}
}

// Defaults: опции из конфига, копия.
func (s *Service) Defaults() Options {
	o := s.defaults
	o.AssetIDs = append([]string(nil), s.defaults.AssetIDs...)
	return o
}

// ComputePositions: позиции по всем asset с ненулевым итоговым размером.
func (s *Service) ComputePositions(ctx context.Context, trades TradeSource, prices PriceSource, opts Options) ([]models.Position, error) {
	snap, err := s.Snapshot(ctx, trades, prices, opts)
	if err != nil {
		return nil, err
	}
	return snap.Positions, nil
}

// Snapshot: то же, что ComputePositions, плюс счётчики прохода.
// Ошибки источников возвращаются как есть, частичный результат не отдаётся.
func (s *Service) Snapshot(ctx context.Context, trades TradeSource, prices PriceSource, opts Options) (snap models.Snapshot, err error) {
	opts = opts.normalized()
	snap.RunID = uuid.NewString()
	log := s.log.With(zap.String("run_id", snap.RunID))

	span, ctx := tracing.StartSpan(ctx, "ledger.compute_positions")
	span.SetTag("run_id", snap.RunID)
	defer func() {
		span.SetTag("pages", snap.Stats.Pages)
		span.SetTag("records", snap.Stats.Records)
		span.SetTag("positions", len(snap.Positions))
		tracing.Finish(span, err)
	}()

	records, pages, err := s.fetchTrades(ctx, trades, opts)
	snap.Stats.Pages = pages
	if err != nil {
		log.Warn("fetch trades failed", zap.Int("pages", pages), zap.Error(err))
		return models.Snapshot{RunID: snap.RunID, Stats: snap.Stats}, err
	}
	snap.Stats.Records = len(records)

	ledger := s.accumulate(log, records, opts, &snap.Stats)
	open := ledger.Open()
	snap.Stats.Assets = ledger.Len()

	quotes := make(map[string]models.Quote, len(open))
	if opts.IncludePrices && prices != nil {
		quotes, err = s.lookupPrices(ctx, prices, open, opts)
		if err != nil {
			log.Warn("price lookup failed", zap.Error(err))
			return models.Snapshot{RunID: snap.RunID, Stats: snap.Stats}, err
		}
		snap.Stats.PriceLookups = len(quotes)
	}

	snap.Positions = make([]models.Position, 0, len(open))
	for _, acc := range open {
		snap.Positions = append(snap.Positions, acc.Position(acc.Unrealized(quotes[acc.AssetID])))
	}

	log.Info("positions snapshot built",
		zap.Int("pages", snap.Stats.Pages),
		zap.Int("records", snap.Stats.Records),
		zap.Int("applied", snap.Stats.Applied),
		zap.Int("skipped", snap.Stats.Skipped),
		zap.Int("assets", snap.Stats.Assets),
		zap.Int("positions", len(snap.Positions)),
	)
	return snap, nil
}

// fetchTrades листает историю, пока не упрёмся в лимит страниц или сделок.
func (s *Service) fetchTrades(ctx context.Context, src TradeSource, opts Options) ([]models.RawTrade, int, error) {
	var (
		records []models.RawTrade
		cursor  string
		pages   int
	)
	for pages < opts.MaxPages && len(records) < opts.MaxFills {
		if err := ctx.Err(); err != nil {
			return nil, pages, err
		}
		limit := helper.MinInt(opts.PageSize, opts.MaxFills-len(records))
		page, err := src.FetchTrades(ctx, cursor, limit)
		if err != nil {
			return nil, pages, err
		}
		pages++
		records = append(records, page.Records...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	if len(records) > opts.MaxFills {
		records = records[:opts.MaxFills]
	}
	return records, pages, nil
}

// accumulate: левая свёртка сделок в порядке поступления. Порядок важен.
func (s *Service) accumulate(log *zap.Logger, records []models.RawTrade, opts Options, stats *models.PassStats) *Ledger {
	var allow map[string]struct{}
	if len(opts.AssetIDs) > 0 {
		allow = make(map[string]struct{}, len(opts.AssetIDs))
		for _, id := range opts.AssetIDs {
			allow[id] = struct{}{}
		}
	}

	ledger := NewLedger()
	for i, rec := range records {
		fill := NormalizeFill(rec)
		switch reason := checkFill(fill, allow); reason {
		case skipNone:
		case skipFiltered:
			stats.Filtered++
			continue
		default:
			stats.Skipped++
			log.Debug("skip trade record", zap.Int("index", i), zap.String("reason", string(reason)))
			continue
		}
		if ledger.Apply(fill) {
			stats.Applied++
		} else {
			stats.Skipped++
		}
	}
	return ledger
}

// lookupPrices запрашивает котировки параллельно, не больше PriceLookupLimit asset.
func (s *Service) lookupPrices(ctx context.Context, prices PriceSource, open []*PositionAccumulator, opts Options) (map[string]models.Quote, error) {
	targets := open
	// лимит по открытым asset, закрытые в счёт не идут
	if len(targets) > opts.PriceLookupLimit {
		targets = targets[:opts.PriceLookupLimit]
	}

	quotes := make([]models.Quote, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.PriceConcurrency)
	for i, acc := range targets {
		assetID := acc.AssetID
		g.Go(func() error {
			q, err := prices.BestPrices(gctx, assetID)
			if err != nil {
				return err
			}
			quotes[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]models.Quote, len(targets))
	for i, acc := range targets {
		out[acc.AssetID] = quotes[i]
	}
	return out, nil
}
