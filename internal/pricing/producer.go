package pricing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const topic = "price-events"

type priceChangedEvent struct {
	ProductID string    `json:"product_id"`
	ChangedAt time.Time `json:"changed_at"`
}

// Producer publishes price-change notifications keyed by product id.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers ...string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: w}
}

func (p *Producer) PublishPriceChanged(ctx context.Context, productID uuid.UUID) error {
	payload, err := json.Marshal(priceChangedEvent{
		ProductID: productID.String(),
		ChangedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(productID.String()),
		Value: payload,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
