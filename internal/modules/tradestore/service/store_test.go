package service

import (
	"context"
	"errors"
	"testing"
	"trade_ledger/internal/models"
	"trade_ledger/internal/modules/config"
	ledgersvc "trade_ledger/internal/modules/ledger/service"
	"trade_ledger/pkg/db"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeTx struct{ runs int }

func (f *fakeTx) RunMaster(ctx context.Context, fn func(ctxTx context.Context, tx pgx.Tx) error) error {
	f.runs++
	return fn(ctx, nil)
}

func (f *fakeTx) RunRepeatableRead(ctx context.Context, fn func(ctxTx context.Context, tx pgx.Tx) error) error {
	return fn(ctx, nil)
}

func (f *fakeTx) Conn() db.Transaction { return nil }

// fakeRepo повторяет семантику таблицы: seq растёт, trade_id уникален.
type fakeRepo struct {
	rows      []models.StoredTrade
	insertErr error
}

func (r *fakeRepo) EnsureSchema(context.Context, db.Transaction) error { return nil }

func (r *fakeRepo) Insert(_ context.Context, _ db.Transaction, t models.StoredTrade) (bool, error) {
	if r.insertErr != nil {
		return false, r.insertErr
	}
	for _, row := range r.rows {
		if row.TradeID == t.TradeID {
			return false, nil
		}
	}
	t.Seq = int64(len(r.rows) + 1)
	r.rows = append(r.rows, t)
	return true, nil
}

func (r *fakeRepo) ListAfter(_ context.Context, _ db.Transaction, after int64, limit int) ([]models.StoredTrade, error) {
	var out []models.StoredTrade
	for _, row := range r.rows {
		if row.Seq > after && len(out) < limit {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeRepo) Count(context.Context, db.Transaction) (int64, error) {
	return int64(len(r.rows)), nil
}

func newStore(t *testing.T) (*Store, *fakeRepo, *fakeTx) {
	repo := &fakeRepo{}
	tx := &fakeTx{}
	return NewStoreWithRepo(tx, repo, zaptest.NewLogger(t)), repo, tx
}

func in(origin, raw string) models.IncomingTrade {
	return models.IncomingTrade{Origin: origin, Raw: []byte(raw)}
}

func TestStore_SaveDeduplicates(t *testing.T) {
	s, repo, tx := newStore(t)
	ctx := context.Background()

	n, err := s.SaveBatch(ctx, []models.IncomingTrade{
		in("seed:a.yaml#0", `{"id":"t1","asset_id":"a","side":"BUY","price":"0.5","size":"10"}`),
		in("seed:a.yaml#1", `{"id":"t1","asset_id":"a","side":"BUY","price":"0.5","size":"10"}`),
		in("kafka:trades/0/7", `{"asset_id":"b","side":"SELL","price":0.25,"size":4}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, tx.runs)
	assert.Equal(t, "a", repo.rows[0].AssetID)
	assert.NotEmpty(t, repo.rows[1].TradeID)

	ok, err := s.Save(ctx, in("kafka:trades/0/7", `{"asset_id":"b","side":"SELL","price":0.25,"size":4}`))
	require.NoError(t, err)
	assert.False(t, ok, "redelivered offset is a duplicate")

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestStore_IdenticalFillsWithoutID(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()
	fill := `{"asset_id":"a","market":"m","side":"BUY","price":"0.5","size":"10"}`

	n, err := s.SaveBatch(ctx, []models.IncomingTrade{
		in("seed:fills.yaml#0", fill),
		in("seed:fills.yaml#1", fill),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// повторная заливка того же файла ничего не добавляет
	n, err = s.SaveBatch(ctx, []models.IncomingTrade{
		in("seed:fills.yaml#0", fill),
		in("seed:fills.yaml#1", fill),
	})
	require.NoError(t, err)
	assert.Zero(t, n)

	// без Origin сделка всегда новая
	ok, err := s.Save(ctx, in("", fill))
	require.NoError(t, err)
	assert.True(t, ok)

	svc := ledgersvc.NewService(config.Default(), zaptest.NewLogger(t))
	opts := svc.Defaults()
	opts.IncludePrices = false
	positions, err := svc.ComputePositions(ctx, s, nil, opts)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "30.000000", positions[0].Size)
	assert.Equal(t, "0.500000", positions[0].AveragePrice)
}

func TestStore_SaveRejectsNonObjects(t *testing.T) {
	s, repo, _ := newStore(t)

	for _, raw := range []string{`[1,2]`, `null`, `nope`} {
		_, err := s.Save(context.Background(), in("", raw))
		assert.ErrorIs(t, err, ErrBadRecord, raw)
	}
	assert.Empty(t, repo.rows)
}

func TestStore_SaveInsertError(t *testing.T) {
	s, repo, _ := newStore(t)
	boom := errors.New("boom")
	repo.insertErr = boom

	_, err := s.Save(context.Background(), in("", `{"id":"x"}`))
	assert.ErrorIs(t, err, boom)
}

func TestStore_FetchTradesPages(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()

	raws := make([]models.IncomingTrade, 0, 5)
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		raws = append(raws, in("", `{"id":"`+id+`","asset_id":"a","market":"m","side":"BUY","price":0.1,"size":1}`))
	}
	_, err := s.SaveBatch(ctx, raws)
	require.NoError(t, err)

	page, err := s.FetchTrades(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "2", page.NextCursor)
	assert.Equal(t, "1", page.Records[0]["id"])

	page, err = s.FetchTrades(ctx, page.NextCursor, 2)
	require.NoError(t, err)
	assert.Equal(t, "4", page.NextCursor)

	page, err = s.FetchTrades(ctx, page.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Empty(t, page.NextCursor)
	assert.Equal(t, "0.1", page.Records[0]["price"].(interface{ String() string }).String())

	_, err = s.FetchTrades(ctx, "-1", 2)
	assert.Error(t, err)
}
