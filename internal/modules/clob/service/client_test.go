package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 0, zaptest.NewLogger(t))
}

func TestBestPrices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/book", r.URL.Path)
		assert.Equal(t, "tok-1", r.URL.Query().Get("token_id"))
		_, _ = w.Write([]byte(`{
			"market": "m1", "asset_id": "tok-1",
			"bids": [{"price": "0.45", "size": "10"}, {"price": "0.48", "size": "5"}, {"price": "x", "size": "1"}],
			"asks": [{"price": "0.55", "size": "3"}, {"price": "0.52", "size": "7"}, {"price": "0", "size": "1"}]
		}`))
	})

	q, err := c.BestPrices(context.Background(), "tok-1")
	require.NoError(t, err)
	require.NotNil(t, q.Bid)
	require.NotNil(t, q.Ask)
	assert.Equal(t, "0.48", q.Bid.String())
	assert.Equal(t, "0.52", q.Ask.String())

	mid, ok := q.Mid()
	require.True(t, ok)
	assert.Equal(t, "0.5", mid.String())
}

func TestBestPrices_OneSidedBook(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"bids": [{"price": "0.3", "size": "1"}], "asks": []}`))
	})

	q, err := c.BestPrices(context.Background(), "tok")
	require.NoError(t, err)
	assert.NotNil(t, q.Bid)
	assert.Nil(t, q.Ask)
	_, ok := q.Mid()
	assert.False(t, ok)
}

func TestBestPrices_NoBook(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"No orderbook exists for the requested token id"}`, http.StatusNotFound)
	})

	q, err := c.BestPrices(context.Background(), "tok")
	require.NoError(t, err)
	assert.Nil(t, q.Bid)
	assert.Nil(t, q.Ask)

	_, err = c.OrderBook(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrNoBook)
}

func TestBestPrices_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusBadGateway)
	})

	_, err := c.BestPrices(context.Background(), "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=502")
}

func TestBestPrices_BadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"bids": [`))
	})

	_, err := c.BestPrices(context.Background(), "tok")
	assert.Error(t, err)
}

func TestOrderBook_EmptyToken(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 0, zaptest.NewLogger(t))
	_, err := c.OrderBook(context.Background(), "")
	assert.Error(t, err)
}
