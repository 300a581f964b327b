// Package events publishes order lifecycle messages to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/thiop/delivery/internal/domain"
)

const Topic = "order-events"

type orderEvent struct {
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status"`
	Total      float64   `json:"total"`
	Restaurant string    `json:"restaurant_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

// PublishOrderEvent writes one message keyed by order id so per-order
// ordering is preserved.
func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, eventType string, order *domain.Order) error {
	payload, err := json.Marshal(orderEvent{
		OrderID:    order.ID,
		Status:     string(order.Status),
		Total:      order.Total,
		Restaurant: order.RestaurantID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() {
	if err := p.writer.Close(); err != nil {
		log.Printf("error closing kafka writer: %v", err)
	}
}
