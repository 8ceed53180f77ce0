// Package events publishes cart lifecycle events to the cart_events topic.
// Publishing is best-effort: a broker failure is logged and never fails the
// originating request.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/shopcarts/pkg/logging"
)

const Topic = "cart_events"

const (
	TypeCartCreated   = "cart_created"
	TypeCartUpdated   = "cart_updated"
	TypeCartDeleted   = "cart_deleted"
	TypeStatusChanged = "cart_status_changed"
	TypeItemAdded     = "item_added"
	TypeItemUpdated   = "item_updated"
	TypeItemRemoved   = "item_removed"
)

type envelope struct {
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	CustomerID int64          `json:"customer_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// Producer wraps a kafka writer. A Producer built without brokers is a
// no-op, which keeps local and test runs broker-free.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	if len(brokers) == 0 {
		return &Producer{}
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, eventType string, customerID int64, data map[string]any) {
	if p == nil || p.writer == nil {
		return
	}

	l := logging.FromContext(ctx)

	value, err := json.Marshal(envelope{
		EventID:    uuid.NewString(),
		Type:       eventType,
		CustomerID: customerID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		l.Error("event_marshal_failed", "type", eventType, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(customerID, 10)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		l.Error("event_publish_failed", "type", eventType, "error", err)
	}
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
