package models

import "github.com/shopspring/decimal"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Fill: нормализованная сделка. Создаётся только нормализатором.
type Fill struct {
	AssetID  string
	MarketID string
	Side     Side
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Inert: такая сделка не меняет позицию.
func (f Fill) Inert() bool {
	return !f.Price.IsPositive() || !f.Quantity.IsPositive()
}
