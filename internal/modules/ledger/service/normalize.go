package service

import (
	"strings"
	"trade_ledger/internal/helper"
	"trade_ledger/internal/models"
)

// Разные источники называют одни и те же поля по-разному.
var (
	assetKeys    = []string{"asset_id", "token_id"}
	marketKeys   = []string{"market", "market_id"}
	quantityKeys = []string{"size", "quantity"}
)

// NormalizeFill приводит сырую запись к models.Fill. Никогда не падает:
// битые поля превращаются в пустые строки и нули.
func NormalizeFill(rec models.RawTrade) models.Fill {
	return models.Fill{
		AssetID:  helper.FirstString(rec, assetKeys...),
		MarketID: helper.FirstString(rec, marketKeys...),
		Side:     models.Side(strings.ToUpper(helper.FirstString(rec, "side"))),
		Price:    helper.ToDecimal(rec["price"]),
		Quantity: helper.ToDecimal(helper.FirstValue(rec, quantityKeys...)),
	}
}

type skipReason string

const (
	skipNone     skipReason = ""
	skipNoAsset  skipReason = "no_asset"
	skipNoMarket skipReason = "no_market"
	skipBadSide  skipReason = "bad_side"
	skipFiltered skipReason = "filtered"
)

// checkFill решает, пойдёт ли сделка в аккумулятор.
// Неизвестный side отбрасываем явно, а не считаем его SELL.
func checkFill(f models.Fill, allow map[string]struct{}) skipReason {
	if f.AssetID == "" {
		return skipNoAsset
	}
	if f.MarketID == "" {
		return skipNoMarket
	}
	if len(allow) > 0 {
		if _, ok := allow[f.AssetID]; !ok {
			return skipFiltered
		}
	}
	if !f.Side.Valid() {
		return skipBadSide
	}
	return skipNone
}
