package service

import (
	"context"
	"strconv"
	"trade_ledger/internal/helper"
	"trade_ledger/internal/models"
	"trade_ledger/internal/modules/tradestore/service/pg/trades"
	"trade_ledger/pkg/db"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrBadRecord = errors.New("trade record is not a json object")

// числа оставляем json.Number, чтобы не терять точность цен
var decoder = sonic.Config{UseNumber: true}.Froze()

type Repo interface {
	EnsureSchema(ctx context.Context, tx db.Transaction) error
	Insert(ctx context.Context, tx db.Transaction, trade models.StoredTrade) (bool, error)
	ListAfter(ctx context.Context, tx db.Transaction, after int64, limit int) ([]models.StoredTrade, error)
	Count(ctx context.Context, tx db.Transaction) (int64, error)
}

// Store: история сделок в Postgres. Курсор страницы = seq последней отданной записи.
type Store struct {
	tx   db.TxManager
	repo Repo
	log  *zap.Logger
}

func NewStore(tx db.TxManager, log *zap.Logger) *Store {
	return NewStoreWithRepo(tx, trades.New(), log)
}

func NewStoreWithRepo(tx db.TxManager, repo Repo, log *zap.Logger) *Store {
	return &Store{tx: tx, repo: repo, log: log.Named("tradestore")}
}

func (s *Store) Init(ctx context.Context) error {
	return s.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		return s.repo.EnsureSchema(ctxTx, tx)
	})
}

func (s *Store) FetchTrades(ctx context.Context, cursor string, limit int) (models.TradePage, error) {
	after, err := parseCursor(cursor)
	if err != nil {
		return models.TradePage{}, err
	}
	if limit <= 0 {
		return models.TradePage{}, nil
	}

	rows, err := s.repo.ListAfter(ctx, s.tx.Conn(), after, limit)
	if err != nil {
		return models.TradePage{}, errors.Wrap(err, "list trades")
	}

	page := models.TradePage{Records: make([]models.RawTrade, 0, len(rows))}
	for _, r := range rows {
		rec, err := decodeRecord(r.Raw)
		if err != nil {
			return models.TradePage{}, errors.Wrapf(err, "trade seq %d", r.Seq)
		}
		page.Records = append(page.Records, rec)
	}
	if len(rows) == limit {
		page.NextCursor = strconv.FormatInt(rows[len(rows)-1].Seq, 10)
	}
	return page, nil
}

// Save кладёт одну сырую сделку. Повтор с тем же id молча пропускается.
func (s *Store) Save(ctx context.Context, trade models.IncomingTrade) (bool, error) {
	n, err := s.SaveBatch(ctx, []models.IncomingTrade{trade})
	return n == 1, err
}

// SaveBatch: все записи одной транзакцией; возвращает число новых.
func (s *Store) SaveBatch(ctx context.Context, incoming []models.IncomingTrade) (int, error) {
	batch := make([]models.StoredTrade, 0, len(incoming))
	for _, in := range incoming {
		t, err := prepare(in)
		if err != nil {
			return 0, err
		}
		batch = append(batch, t)
	}

	inserted := 0
	err := s.tx.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		inserted = 0
		for _, t := range batch {
			ok, err := s.repo.Insert(ctxTx, tx, t)
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "save trades")
	}
	if dup := len(batch) - inserted; dup > 0 {
		s.log.Debug("duplicate trades skipped", zap.Int("count", dup))
	}
	return inserted, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, s.tx.Conn())
}

func parseCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.Errorf("bad cursor %q", cursor)
	}
	return n, nil
}

func decodeRecord(raw []byte) (models.RawTrade, error) {
	var rec map[string]any
	if err := decoder.Unmarshal(raw, &rec); err != nil {
		return nil, errors.Wrap(ErrBadRecord, err.Error())
	}
	if rec == nil {
		return nil, ErrBadRecord
	}
	return rec, nil
}

// prepare достаёт trade_id и asset_id.
// Нет id в записи: uuid от Origin, а без него случайный.
// Одинаковые по содержимому сделки из разных мест остаются разными записями.
func prepare(in models.IncomingTrade) (models.StoredTrade, error) {
	rec, err := decodeRecord(in.Raw)
	if err != nil {
		return models.StoredTrade{}, err
	}
	id := helper.FirstString(rec, "id", "trade_id")
	if id == "" {
		id = fallbackID(in.Origin)
	}
	return models.StoredTrade{
		TradeID: id,
		AssetID: helper.FirstString(rec, "asset_id", "token_id"),
		Raw:     in.Raw,
	}, nil
}

func fallbackID(origin string) string {
	if origin == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(origin)).String()
}
