package pricing

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/repository"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer keeps each product's displayed price at the minimum of its
// variants. It reacts to price-change events instead of recomputing on
// every read.
type Consumer struct {
	repo   repository.ProductRepository
	reader *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(repo repository.ProductRepository, logger *zap.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  "pricing-recompute",
		MaxBytes: 10e6,
	})
	return &Consumer{repo: repo, reader: reader, logger: logger}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.logger.Error("failed to read price event", zap.Error(err))
		return
	}

	var event priceChangedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		c.logger.Error("failed to parse price event", zap.Error(err))
		return
	}

	productID, err := uuid.Parse(event.ProductID)
	if err != nil {
		c.logger.Error("invalid product id in price event",
			zap.String("product_id", event.ProductID),
			zap.Error(err))
		return
	}

	if err := c.repo.RecomputeMinPrice(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return
		}
		c.logger.Error("failed to recompute product price",
			zap.String("product_id", productID.String()),
			zap.Error(err))
	}
}
