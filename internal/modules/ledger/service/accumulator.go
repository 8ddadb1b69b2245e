package service

import (
	"trade_ledger/internal/models"

	"github.com/shopspring/decimal"
)

const outputPlaces = 6

// PositionAccumulator: рабочее состояние позиции по одному asset
// на время одного прохода.
type PositionAccumulator struct {
	AssetID      string
	Market       string
	Size         decimal.Decimal // >0 long, <0 short
	AveragePrice decimal.Decimal // цена входа открытой части, при Size == 0 смысла не имеет
	RealizedPnL  decimal.Decimal
}

func NewAccumulator(assetID, market string) *PositionAccumulator {
	return &PositionAccumulator{
		AssetID:      assetID,
		Market:       market,
		Size:         decimal.Zero,
		AveragePrice: decimal.Zero,
		RealizedPnL:  decimal.Zero,
	}
}

// ApplyFill: учёт по средневзвешенной цене с переворотом позиции.
// Закрытие фиксирует PnL против текущей средней, переворот ставит
// среднюю в цену сделки. Возвращает false, если сделка ничего не изменила.
func (p *PositionAccumulator) ApplyFill(side models.Side, price, qty decimal.Decimal) bool {
	if !qty.IsPositive() || !price.IsPositive() {
		return false
	}

	switch side {
	case models.SideBuy:
		if p.Size.Sign() >= 0 {
			newSize := p.Size.Add(qty)
			if newSize.IsZero() {
				p.AveragePrice = decimal.Zero
			} else {
				p.AveragePrice = p.AveragePrice.Mul(p.Size).Add(price.Mul(qty)).Div(newSize)
			}
			p.Size = newSize
			return true
		}

		// откупаем шорт
		closeSize := decimal.Min(p.Size.Abs(), qty)
		p.RealizedPnL = p.RealizedPnL.Add(p.AveragePrice.Sub(price).Mul(closeSize))
		remaining := qty.Sub(closeSize)
		if remaining.IsPositive() {
			p.Size = remaining
			p.AveragePrice = price
		} else {
			p.Size = p.Size.Add(qty)
		}
		return true

	case models.SideSell:
		if p.Size.Sign() <= 0 {
			short := p.Size.Abs()
			newShort := short.Add(qty)
			if newShort.IsZero() {
				p.AveragePrice = decimal.Zero
			} else {
				p.AveragePrice = p.AveragePrice.Mul(short).Add(price.Mul(qty)).Div(newShort)
			}
			p.Size = newShort.Neg()
			return true
		}

		// продаём из лонга
		closeSize := decimal.Min(p.Size, qty)
		p.RealizedPnL = p.RealizedPnL.Add(price.Sub(p.AveragePrice).Mul(closeSize))
		remaining := qty.Sub(closeSize)
		if remaining.IsPositive() {
			p.Size = remaining.Neg()
			p.AveragePrice = price
		} else {
			p.Size = p.Size.Sub(qty)
		}
		return true
	}

	return false
}

func (p *PositionAccumulator) Flat() bool { return p.Size.IsZero() }

// Unrealized: mark-to-market по mid. Без котировки 0.
func (p *PositionAccumulator) Unrealized(q models.Quote) decimal.Decimal {
	ref, ok := q.Mid()
	if !ok || !ref.IsPositive() || p.Flat() {
		return decimal.Zero
	}
	if p.Size.IsPositive() {
		return ref.Sub(p.AveragePrice).Mul(p.Size)
	}
	return p.AveragePrice.Sub(ref).Mul(p.Size.Abs())
}

func (p *PositionAccumulator) Position(unrealized decimal.Decimal) models.Position {
	return models.Position{
		Market:        p.Market,
		AssetID:       p.AssetID,
		Size:          p.Size.StringFixed(outputPlaces),
		AveragePrice:  p.AveragePrice.StringFixed(outputPlaces),
		RealizedPnL:   p.RealizedPnL.StringFixed(outputPlaces),
		UnrealizedPnL: unrealized.StringFixed(outputPlaces),
	}
}

// Ledger: аккумуляторы одного прохода в порядке первого появления asset.
type Ledger struct {
	order   []string
	byAsset map[string]*PositionAccumulator
}

func NewLedger() *Ledger {
	return &Ledger{byAsset: make(map[string]*PositionAccumulator)}
}

// Apply создаёт аккумулятор при первой сделке по asset и применяет к нему сделку.
func (l *Ledger) Apply(f models.Fill) bool {
	acc, ok := l.byAsset[f.AssetID]
	if !ok {
		acc = NewAccumulator(f.AssetID, f.MarketID)
		l.byAsset[f.AssetID] = acc
		l.order = append(l.order, f.AssetID)
	}
	return acc.ApplyFill(f.Side, f.Price, f.Quantity)
}

func (l *Ledger) Get(assetID string) (*PositionAccumulator, bool) {
	acc, ok := l.byAsset[assetID]
	return acc, ok
}

func (l *Ledger) Len() int { return len(l.order) }

// Open: ненулевые позиции в порядке первого появления.
func (l *Ledger) Open() []*PositionAccumulator {
	out := make([]*PositionAccumulator, 0, len(l.order))
	for _, id := range l.order {
		if acc := l.byAsset[id]; !acc.Flat() {
			out = append(out, acc)
		}
	}
	return out
}
