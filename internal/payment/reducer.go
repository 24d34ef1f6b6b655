package payment

import (
	"wellspring/internal/model"

	"github.com/google/uuid"
)

// Transition is the effect of one event on one order. A no-op transition has
// To equal to From and nothing to write.
type Transition struct {
	OrderID         uuid.UUID
	From            model.OrderStatus
	To              model.OrderStatus
	PaymentIntentID string
	Items           []model.OrderItem
	Reason          string
}

// IsNoOp reports whether the transition leaves the order untouched.
func (t Transition) IsNoOp() bool {
	return t.From == t.To
}

// Reduce computes the transition event causes on order. It is total: every
// combination of status and kind yields a transition, and anything outside the
// lifecycle table is a no-op. Terminal orders only move from paid to refunded.
func Reduce(order model.Order, event Event) Transition {
	t := Transition{
		OrderID:         order.ID,
		From:            order.Status,
		To:              order.Status,
		PaymentIntentID: order.StripePaymentIntentID,
	}

	switch order.Status {
	case model.OrderStatusPending:
		switch event.Kind {
		case CheckoutSessionCompleted, PaymentIntentSucceeded:
			t.To = model.OrderStatusPaid
			if event.PaymentIntentID != "" {
				t.PaymentIntentID = event.PaymentIntentID
			}
			t.Items = ItemsFromMetadata(order)
		case PaymentIntentFailed:
			t.To = model.OrderStatusCancelled
		case ChargeRefunded:
			t.To = model.OrderStatusRefunded
		default:
			t.Reason = "event kind ignored"
		}
	case model.OrderStatusPaid:
		if event.Kind == ChargeRefunded {
			t.To = model.OrderStatusRefunded
		} else {
			t.Reason = "order already paid"
		}
	case model.OrderStatusCancelled, model.OrderStatusRefunded:
		t.Reason = "order is terminal"
	default:
		t.Reason = "unrecognised order status"
	}

	return t
}

// ItemsFromMetadata builds the order items of order from its purchase snapshot.
// Line numbers start at one and follow snapshot order, so rebuilding the items
// for the same order always yields the same keys.
func ItemsFromMetadata(order model.Order) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(order.Metadata.Lines))
	for i, line := range order.Metadata.Lines {
		items = append(items, model.OrderItem{
			OrderID:         order.ID,
			LineNo:          i + 1,
			ItemType:        line.ItemType,
			ItemID:          line.ItemID,
			Name:            line.Name,
			Quantity:        line.Quantity,
			Price:           line.Price,
			BookingDate:     line.BookingDate,
			BookingTime:     line.BookingTime,
			DurationMinutes: line.Duration,
		})
	}
	return items
}
