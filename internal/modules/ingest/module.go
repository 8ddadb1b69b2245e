package ingest

import (
	"context"
	"trade_ledger/internal/modules/config"
	"trade_ledger/internal/modules/ingest/service"
	tradestore "trade_ledger/internal/modules/tradestore/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module: чтение сделок из kafka в tradestore. Выключен, пока kafka.enabled=false.
func Module() fx.Option {
	return fx.Module("ingest",
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, store *tradestore.Store, log *zap.Logger) {
			if !cfg.Kafka.Enabled {
				log.Info("kafka ingest disabled")
				return
			}
			reader := service.NewReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
			consumer := service.NewConsumer(reader, store, log)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						defer close(done)
						log.Info("kafka ingest started",
							zap.Strings("brokers", cfg.Kafka.Brokers),
							zap.String("topic", cfg.Kafka.Topic),
						)
						if err := consumer.Run(ctx); err != nil {
							log.Error("kafka ingest stopped", zap.Error(err))
						}
					}()
					return nil
				},
				OnStop: func(stopCtx context.Context) error {
					cancel()
					select {
					case <-done:
					case <-stopCtx.Done():
						log.Warn("kafka ingest did not stop in time")
					}
					st := consumer.Stats()
					log.Info("kafka ingest stopped",
						zap.Int("read", st.Read),
						zap.Int("saved", st.Saved),
						zap.Int("dupes", st.Dupes),
						zap.Int("rejected", st.Rejected),
					)
					return nil
				},
			})
		}),
	)
}
