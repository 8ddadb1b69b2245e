package service

import (
	"context"
	"trade_ledger/internal/models"
	"trade_ledger/internal/modules/config"
)

// TradeSource отдаёт историю сделок постранично.
// Пустой NextCursor означает конец потока.
type TradeSource interface {
	FetchTrades(ctx context.Context, cursor string, limit int) (models.TradePage, error)
}

// PriceSource отдаёт лучшие bid/ask по asset.
type PriceSource interface {
	BestPrices(ctx context.Context, assetID string) (models.Quote, error)
}

type TradeSourceFunc func(ctx context.Context, cursor string, limit int) (models.TradePage, error)

func (f TradeSourceFunc) FetchTrades(ctx context.Context, cursor string, limit int) (models.TradePage, error) {
	return f(ctx, cursor, limit)
}

type PriceSourceFunc func(ctx context.Context, assetID string) (models.Quote, error)

func (f PriceSourceFunc) BestPrices(ctx context.Context, assetID string) (models.Quote, error) {
	return f(ctx, assetID)
}

// Options: параметры одного прохода.
type Options struct {
	MaxFills         int
	MaxPages         int
	PageSize         int
	AssetIDs         []string // пусто = все
	IncludePrices    bool
	PriceLookupLimit int
	PriceConcurrency int
}

func OptionsFromConfig(c config.Ledger) Options {
	return Options{
		MaxFills:         c.MaxFills,
		MaxPages:         c.MaxPages,
		PageSize:         c.PageSize,
		AssetIDs:         append([]string(nil), c.AssetIDs...),
		IncludePrices:    c.IncludePrices,
		PriceLookupLimit: c.PriceLookupLimit,
		PriceConcurrency: c.PriceConcurrency,
	}
}

// normalized подставляет безопасные значения вместо нулей.
func (o Options) normalized() Options {
	if o.PageSize <= 0 {
		o.PageSize = 100
	}
	if o.PriceLookupLimit < 0 {
		o.PriceLookupLimit = 0
	}
	if o.PriceConcurrency <= 0 {
		o.PriceConcurrency = 1
	}
	return o
}
