package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// Terminal reports whether no further payment event may move the order forward.
func (s OrderStatus) Terminal() bool {
	return s != OrderStatusPending
}

// OrderLine is one purchased line as snapshotted into the order metadata at checkout.
type OrderLine struct {
	ItemType    ItemType        `json:"itemType"`
	ItemID      string          `json:"itemId"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	BookingDate string          `json:"bookingDate,omitempty"`
	BookingTime string          `json:"bookingTime,omitempty"`
	Duration    int             `json:"duration,omitempty"`
}

// OrderMetadata is the purchase snapshot stored with the order.
type OrderMetadata struct {
	Lines []OrderLine `json:"lines"`
}

// Order represents a customer order created at checkout.
type Order struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	UserID                *uuid.UUID      `json:"userId,omitempty" db:"user_id"`
	CustomerEmail         string          `json:"customerEmail,omitempty" db:"customer_email"`
	Status                OrderStatus     `json:"status" db:"status"`
	StripeSessionID       string          `json:"stripeSessionId" db:"stripe_session_id"`
	StripePaymentIntentID string          `json:"stripePaymentIntentId,omitempty" db:"stripe_payment_intent_id"`
	Total                 decimal.Decimal `json:"total" db:"total"`
	Currency              string          `json:"currency" db:"currency"`
	Metadata              OrderMetadata   `json:"metadata" db:"metadata"`
	CreatedAt             time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a persisted line of a paid order.
type OrderItem struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderID         uuid.UUID       `json:"orderId" db:"order_id"`
	LineNo          int             `json:"lineNo" db:"line_no"`
	ItemType        ItemType        `json:"itemType" db:"item_type"`
	ItemID          string          `json:"itemId" db:"item_id"`
	Name            string          `json:"name" db:"name"`
	Quantity        int             `json:"quantity" db:"quantity"`
	Price           decimal.Decimal `json:"price" db:"price"`
	BookingDate     string          `json:"bookingDate,omitempty" db:"booking_date"`
	BookingTime     string          `json:"bookingTime,omitempty" db:"booking_time"`
	DurationMinutes int             `json:"durationMinutes,omitempty" db:"duration_minutes"`
}

// CheckoutRequest represents the request payload for starting a checkout.
// When Items is empty the session cart is used.
type CheckoutRequest struct {
	Items         []AddToCartRequest `json:"items,omitempty"`
	CustomerEmail string             `json:"customerEmail,omitempty"`
	UserID        *uuid.UUID         `json:"-"`
}

// CheckoutResponse is returned once the gateway session has been created.
type CheckoutResponse struct {
	OrderID   uuid.UUID `json:"orderId"`
	SessionID string    `json:"sessionId"`
	URL       string    `json:"url"`
}

// OrderResponse represents an order together with its persisted items.
type OrderResponse struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

// OrderStatusResponse is the public view of an order after the payment redirect.
type OrderStatusResponse struct {
	OrderID  uuid.UUID       `json:"orderId"`
	Status   OrderStatus     `json:"status"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}
