package models

import "github.com/shopspring/decimal"

// RawTrade: сырая запись истории сделок как пришла из источника
// (CLOB, kafka, файл). Имена полей у разных источников отличаются.
type RawTrade map[string]any

// TradePage: одна страница истории. Пустой NextCursor = конец потока.
type TradePage struct {
	Records    []RawTrade
	NextCursor string
}

// Quote: лучшие цены по asset. nil = цены нет.
type Quote struct {
	Bid *decimal.Decimal
	Ask *decimal.Decimal
}

// Mid возвращает (bid+ask)/2, если обе цены есть и положительны.
func (q Quote) Mid() (decimal.Decimal, bool) {
	if q.Bid == nil || q.Ask == nil {
		return decimal.Zero, false
	}
	if !q.Bid.IsPositive() || !q.Ask.IsPositive() {
		return decimal.Zero, false
	}
	return q.Bid.Add(*q.Ask).Div(decimal.NewFromInt(2)), true
}

// StoredTrade: запись в таблице trades. Seq монотонный, им же листаем историю.
type StoredTrade struct {
	Seq     int64
	TradeID string
	AssetID string
	Raw     []byte
}

// IncomingTrade: сырая сделка на запись в историю. Origin однозначно указывает
// место, откуда она пришла (файл и номер строки, топик/партиция/offset).
type IncomingTrade struct {
	Origin string
	Raw    []byte
}
