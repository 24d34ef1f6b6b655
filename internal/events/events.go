// Package events publishes domain events to the message broker and consumes
// the ones this service reacts to itself.
package events

import (
	"context"
	"time"

	"wellspring/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopicOrderPaid is the queue or topic order.paid events are sent to.
const TopicOrderPaid = "order.paid"

// OrderPaidEvent is emitted once an order reaches paid.
type OrderPaidEvent struct {
	OrderID       uuid.UUID         `json:"orderId"`
	CustomerEmail string            `json:"customerEmail,omitempty"`
	Total         decimal.Decimal   `json:"total"`
	Currency      string            `json:"currency"`
	Items         []model.OrderItem `json:"items"`
	PaidAt        time.Time         `json:"paidAt"`
}

// Publisher sends domain events to the broker.
type Publisher interface {
	PublishOrderPaid(ctx context.Context, event OrderPaidEvent) error
	Close() error
}

// Handler processes one message body. A returned error rejects the message.
type Handler interface {
	HandleMessage(ctx context.Context, body []byte) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPaid(context.Context, OrderPaidEvent) error { return nil }
func (NopPublisher) Close() error                                         { return nil }
