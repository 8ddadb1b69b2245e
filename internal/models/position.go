package models

// Position: итоговая позиция по одному asset в снапшоте.
// Все числовые поля отформатированы с 6 знаками после запятой.
type Position struct {
	Market        string `json:"market"`
	AssetID       string `json:"asset_id"`
	Size          string `json:"size"` // >0 long, <0 short
	AveragePrice  string `json:"average_price"`
	RealizedPnL   string `json:"realized_pnl"`
	UnrealizedPnL string `json:"unrealized_pnl"`
}

// Snapshot: результат одного прохода учёта.
type Snapshot struct {
	RunID     string     `json:"run_id"`
	Positions []Position `json:"positions"`
	Stats     PassStats  `json:"stats"`
}

// PassStats: счётчики прохода, для логов и /healthz.
type PassStats struct {
	Pages        int `json:"pages"`
	Records      int `json:"records"`
	Applied      int `json:"applied"`
	Skipped      int `json:"skipped"`
	Filtered     int `json:"filtered"`
	Assets       int `json:"assets"`
	PriceLookups int `json:"price_lookups"`
}
