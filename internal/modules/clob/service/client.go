package service

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"trade_ledger/internal/models"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNoBook: у токена нет стакана (рынок закрыт или токен неизвестен).
var ErrNoBook = errors.New("order book not found")

const maxErrBody = 512

type BookLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

type OrderBook struct {
	Market  string      `json:"market"`
	AssetID string      `json:"asset_id"`
	Bids    []BookLevel `json:"bids"`
	Asks    []BookLevel `json:"asks"`
}

// Client: публичные эндпоинты CLOB, только чтение, без подписи и ретраев.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.Named("clob"),
	}
}

func (c *Client) OrderBook(ctx context.Context, tokenID string) (*OrderBook, error) {
	if tokenID == "" {
		return nil, errors.New("token id is required")
	}
	u := c.baseURL + "/book?" + url.Values{"token_id": {tokenID}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(ErrNoBook, "token %s", tokenID)
	case resp.StatusCode != http.StatusOK:
		if len(body) > maxErrBody {
			body = body[:maxErrBody]
		}
		return nil, errors.Errorf("clob error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var book OrderBook
	if err := sonic.Unmarshal(body, &book); err != nil {
		return nil, errors.Wrap(err, "unmarshal book")
	}
	return &book, nil
}

// BestPrices: лучший bid (максимум) и лучший ask (минимум) из стакана.
// Стакана нет: пустая котировка, unrealized по такому asset будет 0.
func (c *Client) BestPrices(ctx context.Context, assetID string) (models.Quote, error) {
	book, err := c.OrderBook(ctx, assetID)
	if errors.Is(err, ErrNoBook) {
		c.log.Debug("no order book", zap.String("asset_id", assetID))
		return models.Quote{}, nil
	}
	if err != nil {
		return models.Quote{}, err
	}
	return book.Quote(), nil
}

func (b *OrderBook) Quote() models.Quote {
	return models.Quote{
		Bid: bestLevel(b.Bids, func(p, best decimal.Decimal) bool { return p.GreaterThan(best) }),
		Ask: bestLevel(b.Asks, func(p, best decimal.Decimal) bool { return p.LessThan(best) }),
	}
}

func bestLevel(levels []BookLevel, better func(p, best decimal.Decimal) bool) *decimal.Decimal {
	var best *decimal.Decimal
	for _, l := range levels {
		p, err := decimal.NewFromString(strings.TrimSpace(l.Price))
		if err != nil || !p.IsPositive() {
			continue
		}
		if best == nil || better(p, *best) {
			best = &p
		}
	}
	return best
}
