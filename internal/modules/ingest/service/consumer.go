package service

import (
	"context"
	"fmt"
	"sync"
	"time"
	"trade_ledger/internal/models"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// TradeSink: куда складываем сырые сделки (tradestore).
type TradeSink interface {
	Save(ctx context.Context, trade models.IncomingTrade) (bool, error)
}

type Stats struct {
	Read     int
	Saved    int
	Dupes    int
	Rejected int
}

// Consumer читает сырые сделки из топика и складывает их в историю.
type Consumer struct {
	reader MessageReader
	sink   TradeSink
	log    *zap.Logger

	mu    sync.Mutex
	stats Stats
}

func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1e3,
		MaxBytes: 1e6,
		MaxWait:  500 * time.Millisecond,
	})
}

func NewConsumer(reader MessageReader, sink TradeSink, log *zap.Logger) *Consumer {
	return &Consumer{reader: reader, sink: sink, log: log.Named("ingest")}
}

// Run крутится до отмены контекста. Отмена не считается ошибкой.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "read message")
		}
		c.handle(ctx, m)
	}
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) {
	saved, err := c.sink.Save(ctx, models.IncomingTrade{Origin: Origin(m), Raw: m.Value})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Read++
	switch {
	case err != nil:
		c.stats.Rejected++
		c.log.Warn("trade not saved",
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.Error(err),
		)
	case saved:
		c.stats.Saved++
		c.log.Debug("trade saved", zap.Int64("offset", m.Offset))
	default:
		c.stats.Dupes++
	}
}

func (c *Consumer) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Origin: адрес сообщения в kafka. Повторная доставка того же offset даёт тот же Origin.
func Origin(m kafka.Message) string {
	return fmt.Sprintf("kafka:%s/%d/%d", m.Topic, m.Partition, m.Offset)
}
