package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
	"trade_ledger/internal/modules/config"
	ledgersvc "trade_ledger/internal/modules/ledger/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module поднимает публичный HTTP (GET /api/positions).
func Module() fx.Option {
	return fx.Module("api",
		fx.Provide(func(s *ledgersvc.Snapshotter, cfg *config.Config, log *zap.Logger) *Server {
			if !cfg.Log.Dev {
				gin.SetMode(gin.ReleaseMode)
			}
			return NewServer(s, log.Named("api"))
		}),
		fx.Invoke(func(lc fx.Lifecycle, s *Server, cfg *config.Config, log *zap.Logger) {
			addr := fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.PublicPort)
			srv := &http.Server{
				Addr:              addr,
				Handler:           s.R,
				ReadHeaderTimeout: 5 * time.Second,
			}
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					ln, err := net.Listen("tcp", addr)
					if err != nil {
						return err
					}
					go func() {
						if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
							log.Error("api server", zap.Error(err))
						}
					}()
					log.Info("api listening", zap.String("addr", addr))
					return nil
				},
				OnStop: func(ctx context.Context) error {
					return srv.Shutdown(ctx)
				},
			})
		}),
	)
}
