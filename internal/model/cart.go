package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemType distinguishes shop products from bookable services.
type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeService ItemType = "service"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeProduct || t == ItemTypeService
}

// CartItem is one line of a cart. Booking fields are only meaningful for services.
type CartItem struct {
	ID          string          `json:"id"`
	Type        ItemType        `json:"type"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Image       string          `json:"image,omitempty"`
	Slug        string          `json:"slug,omitempty"`
	BookingDate string          `json:"bookingDate,omitempty"`
	BookingTime string          `json:"bookingTime,omitempty"`
	Duration    int             `json:"duration,omitempty"`
}

// IsDatedBooking reports whether the line is a service booked for a specific date.
func (i CartItem) IsDatedBooking() bool {
	return i.BookingDate != ""
}

// Cart is the ordered list of pending purchases of one browsing session.
type Cart struct {
	Items       []CartItem `json:"items"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

// CartResponse is the cart together with its derived aggregates.
type CartResponse struct {
	Cart      Cart            `json:"cart"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// AddToCartRequest represents the request payload for adding a cart line.
type AddToCartRequest struct {
	ID          string   `json:"id"`
	Type        ItemType `json:"type"`
	Quantity    int      `json:"quantity"`
	BookingDate string   `json:"bookingDate,omitempty"`
	BookingTime string   `json:"bookingTime,omitempty"`
}

// UpdateQuantityRequest represents the request payload for changing a line quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}
