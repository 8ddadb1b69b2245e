package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
	"trade_ledger/internal/models"
	ledgersvc "trade_ledger/internal/modules/ledger/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	maxFillsCap = 10000
	maxPagesCap = 100
)

type Snapshotter interface {
	Snapshot(ctx context.Context, opts ledgersvc.Options, fresh bool) (models.Snapshot, error)
	Defaults() ledgersvc.Options
}

type Server struct {
	R      *gin.Engine
	ledger Snapshotter
	log    *zap.Logger
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewServer(ledger Snapshotter, log *zap.Logger) *Server {
	g := gin.New()

	g.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http_request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	})
	g.Use(gin.Recovery())

	s := &Server{R: g, ledger: ledger, log: log}

	g.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	g.GET("/api/positions", s.getPositions)

	return s
}

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Code: "bad_request", Message: msg})
}

func (s *Server) upstreamError(c *gin.Context, where string, err error) {
	s.log.Error("upstream_error", zap.String("where", where), zap.Error(err))
	c.JSON(http.StatusBadGateway, apiError{Code: "upstream_error", Message: err.Error()})
}

// parseInt: пусто даёт def, иначе целое в [min, max].
func parseInt(v string, def, min, max int) (int, bool) {
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min || n > max {
		return 0, false
	}
	return n, true
}

func parseBool(v string, def bool) (bool, bool) {
	if v == "" {
		return def, true
	}
	b, err := strconv.ParseBool(v)
	return b, err == nil
}

// assetIDs: ?asset_id=a&asset_id=b или ?asset_id=a,b
func assetIDs(values []string) []string {
	var out []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

func (s *Server) getPositions(c *gin.Context) {
	opts := s.ledger.Defaults()

	var ok bool
	if opts.MaxFills, ok = parseInt(c.Query("limit"), opts.MaxFills, 1, maxFillsCap); !ok {
		s.badRequest(c, "limit must be an integer in [1, 10000]")
		return
	}
	if opts.MaxPages, ok = parseInt(c.Query("max_pages"), opts.MaxPages, 1, maxPagesCap); !ok {
		s.badRequest(c, "max_pages must be an integer in [1, 100]")
		return
	}
	if opts.PriceLookupLimit, ok = parseInt(c.Query("price_lookup_limit"), opts.PriceLookupLimit, 0, maxFillsCap); !ok {
		s.badRequest(c, "price_lookup_limit must be a non-negative integer")
		return
	}
	if opts.IncludePrices, ok = parseBool(c.Query("include_prices"), opts.IncludePrices); !ok {
		s.badRequest(c, "include_prices must be a boolean")
		return
	}
	fresh, ok := parseBool(c.Query("fresh"), false)
	if !ok {
		s.badRequest(c, "fresh must be a boolean")
		return
	}
	if ids := assetIDs(c.QueryArray("asset_id")); len(ids) > 0 {
		opts.AssetIDs = ids
	}

	snap, err := s.ledger.Snapshot(c.Request.Context(), opts, fresh)
	if err != nil {
		s.upstreamError(c, "Snapshot", err)
		return
	}
	if snap.Positions == nil {
		snap.Positions = []models.Position{}
	}
	c.JSON(http.StatusOK, snap)
}
