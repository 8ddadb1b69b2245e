package service

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"trade_ledger/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// FileSource: история сделок и котировки из yaml/json файла.
// Нужен для офлайн-прогона (cmd/replay) и для тестов.
type FileSource struct {
	records []models.RawTrade
	quotes  map[string]models.Quote
}

type fileQuote struct {
	Bid *float64 `yaml:"bid" json:"bid"`
	Ask *float64 `yaml:"ask" json:"ask"`
}

type fileDump struct {
	Trades []map[string]any     `yaml:"trades" json:"trades"`
	Quotes map[string]fileQuote `yaml:"quotes" json:"quotes"`
}

func LoadFileSource(path string) (*FileSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read trades file")
	}

	var dump fileDump
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = sonic.Unmarshal(raw, &dump)
	default:
		err = yaml.Unmarshal(raw, &dump)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	fs := &FileSource{
		records: make([]models.RawTrade, 0, len(dump.Trades)),
		quotes:  make(map[string]models.Quote, len(dump.Quotes)),
	}
	for _, t := range dump.Trades {
		fs.records = append(fs.records, models.RawTrade(t))
	}
	for asset, q := range dump.Quotes {
		fs.quotes[asset] = models.Quote{Bid: decPtr(q.Bid), Ask: decPtr(q.Ask)}
	}
	return fs, nil
}

func NewMemorySource(records []models.RawTrade, quotes map[string]models.Quote) *FileSource {
	if quotes == nil {
		quotes = map[string]models.Quote{}
	}
	return &FileSource{records: records, quotes: quotes}
}

func decPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func (f *FileSource) Records() []models.RawTrade { return f.records }

// FetchTrades: курсор это смещение в списке записей.
func (f *FileSource) FetchTrades(_ context.Context, cursor string, limit int) (models.TradePage, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return models.TradePage{}, errors.Errorf("bad cursor %q", cursor)
		}
		offset = n
	}
	if offset >= len(f.records) {
		return models.TradePage{}, nil
	}
	end := len(f.records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	page := models.TradePage{Records: f.records[offset:end]}
	if end < len(f.records) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (f *FileSource) BestPrices(_ context.Context, assetID string) (models.Quote, error) {
	return f.quotes[assetID], nil
}
