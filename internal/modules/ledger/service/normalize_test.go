package service

import (
	"encoding/json"
	"math"
	"testing"
	"trade_ledger/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFill(t *testing.T) {
	tests := []struct {
		name string
		rec  models.RawTrade
		want models.Fill
	}{
		{
			name: "canonical fields",
			rec:  models.RawTrade{"asset_id": "tok-1", "market": "0xabc", "side": "buy", "price": "0.55", "size": 10},
			want: models.Fill{AssetID: "tok-1", MarketID: "0xabc", Side: models.SideBuy, Price: d("0.55"), Quantity: d("10")},
		},
		{
			name: "alternative keys",
			rec:  models.RawTrade{"token_id": "tok-2", "market_id": "0xdef", "side": "SELL", "price": 0.4, "size": "3"},
			want: models.Fill{AssetID: "tok-2", MarketID: "0xdef", Side: models.SideSell, Price: d("0.4"), Quantity: d("3")},
		},
		{
			name: "empty primary key falls through",
			rec:  models.RawTrade{"asset_id": "", "token_id": "tok-3", "market": nil, "market_id": "m", "side": " Sell ", "price": json.Number("1.5"), "quantity": int64(2)},
			want: models.Fill{AssetID: "tok-3", MarketID: "m", Side: models.SideSell, Price: d("1.5"), Quantity: d("2")},
		},
		{
			name: "garbage numbers become zero",
			rec:  models.RawTrade{"asset_id": "a", "market": "m", "side": "BUY", "price": "abc", "size": "NaN"},
			want: models.Fill{AssetID: "a", MarketID: "m", Side: models.SideBuy, Price: d("0"), Quantity: d("0")},
		},
		{
			name: "non finite floats become zero",
			rec:  models.RawTrade{"asset_id": "a", "market": "m", "side": "BUY", "price": math.Inf(1), "size": math.NaN()},
			want: models.Fill{AssetID: "a", MarketID: "m", Side: models.SideBuy, Price: d("0"), Quantity: d("0")},
		},
		{
			name: "unsupported types become zero",
			rec:  models.RawTrade{"asset_id": "a", "market": "m", "side": "BUY", "price": true, "size": []any{1}},
			want: models.Fill{AssetID: "a", MarketID: "m", Side: models.SideBuy, Price: d("0"), Quantity: d("0")},
		},
		{
			name: "padded strings",
			rec:  models.RawTrade{"asset_id": "a", "market": "m", "side": "buy", "price": " 0.25 ", "size": "1e2"},
			want: models.Fill{AssetID: "a", MarketID: "m", Side: models.SideBuy, Price: d("0.25"), Quantity: d("100")},
		},
		{
			name: "empty record",
			rec:  models.RawTrade{},
			want: models.Fill{Price: d("0"), Quantity: d("0")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeFill(tt.rec)
			assert.Equal(t, tt.want.AssetID, got.AssetID)
			assert.Equal(t, tt.want.MarketID, got.MarketID)
			assert.Equal(t, tt.want.Side, got.Side)
			assert.True(t, tt.want.Price.Equal(got.Price), "price: want %s got %s", tt.want.Price, got.Price)
			assert.True(t, tt.want.Quantity.Equal(got.Quantity), "quantity: want %s got %s", tt.want.Quantity, got.Quantity)
		})
	}
}

func TestCheckFill(t *testing.T) {
	ok := models.Fill{AssetID: "a", MarketID: "m", Side: models.SideBuy, Price: d("1"), Quantity: d("1")}
	allow := map[string]struct{}{"a": {}}

	assert.Equal(t, skipNone, checkFill(ok, nil))
	assert.Equal(t, skipNone, checkFill(ok, allow))

	noAsset := ok
	noAsset.AssetID = ""
	assert.Equal(t, skipNoAsset, checkFill(noAsset, nil))

	noMarket := ok
	noMarket.MarketID = ""
	assert.Equal(t, skipNoMarket, checkFill(noMarket, nil))

	other := ok
	other.AssetID = "b"
	assert.Equal(t, skipFiltered, checkFill(other, allow))

	badSide := ok
	badSide.Side = "HOLD"
	assert.Equal(t, skipBadSide, checkFill(badSide, nil))
}
