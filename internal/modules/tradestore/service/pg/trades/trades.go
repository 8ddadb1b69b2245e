package trades

import (
	"context"
	"fmt"
	"trade_ledger/internal/models"
	"trade_ledger/internal/modules/tradestore/service/pg/trades/sql"
	"trade_ledger/pkg/db"
)

// Trades implement db store
type Trades struct {
	sql *sql.Queries
}

// New instance
func New() *Trades {
	return &Trades{
		sql: sql.New(),
	}
}

func (t *Trades) EnsureSchema(ctx context.Context, tx db.Transaction) error {
	if _, err := tx.Exec(ctx, sql.Schema); err != nil {
		return fmt.Errorf("Trades.EnsureSchema: %w", err)
	}
	return nil
}

// Insert возвращает false, если сделка с таким trade_id уже есть.
func (t *Trades) Insert(ctx context.Context, tx db.Transaction, trade models.StoredTrade) (inserted bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Trades.Insert: %w", err)
		}
	}()
	n, err := t.sql.InsertTrade(ctx, tx, &sql.InsertTradeParams{
		TradeID: trade.TradeID,
		AssetID: trade.AssetID,
		Raw:     trade.Raw,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *Trades) ListAfter(ctx context.Context, tx db.Transaction, after int64, limit int) (trades []models.StoredTrade, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Trades.ListAfter: %w", err)
		}
	}()
	rows, err := t.sql.ListTradesAfter(ctx, tx, &sql.ListTradesAfterParams{
		Seq:   after,
		Limit: int32(limit),
	})
	if err != nil {
		return nil, err
	}
	trades = make([]models.StoredTrade, 0, len(rows))
	for _, r := range rows {
		trades = append(trades, models.StoredTrade{Seq: r.Seq, Raw: r.Raw})
	}
	return trades, nil
}

func (t *Trades) Count(ctx context.Context, tx db.Transaction) (int64, error) {
	n, err := t.sql.CountTrades(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("Trades.Count: %w", err)
	}
	return n, nil
}
