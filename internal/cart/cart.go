// Package cart holds the shopping cart of a browsing session. The functions in
// this file are pure: they never mutate the cart they are given and always
// return a fresh value stamped with the supplied time.
package cart

import (
	"time"

	"wellspring/internal/model"

	"github.com/shopspring/decimal"
)

// Empty returns a cart with no lines.
func Empty(now time.Time) model.Cart {
	return model.Cart{Items: []model.CartItem{}, LastUpdated: now}
}

// AddItem adds quantity of item to the cart. A product add merges into an
// existing line with the same id and type when neither carries a booking date;
// every other add appends a new line. Quantities below one are treated as one.
func AddItem(c model.Cart, item model.CartItem, quantity int, now time.Time) model.Cart {
	if quantity < 1 {
		quantity = 1
	}

	items := copyItems(c.Items)

	if item.Type == model.ItemTypeProduct && !item.IsDatedBooking() {
		for i := range items {
			if items[i].ID == item.ID && items[i].Type == item.Type && !items[i].IsDatedBooking() {
				items[i].Quantity += quantity
				return model.Cart{Items: items, LastUpdated: now}
			}
		}
	}

	item.Quantity = quantity
	items = append(items, item)
	return model.Cart{Items: items, LastUpdated: now}
}

// UpdateItemQuantity sets the quantity of every line with itemID.
// A quantity of zero or less removes those lines.
func UpdateItemQuantity(c model.Cart, itemID string, quantity int, now time.Time) model.Cart {
	if quantity <= 0 {
		return RemoveItem(c, itemID, now)
	}

	items := copyItems(c.Items)
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
		}
	}
	return model.Cart{Items: items, LastUpdated: now}
}

// RemoveItem drops every line with itemID. Removing an absent id is a no-op
// apart from the timestamp.
func RemoveItem(c model.Cart, itemID string, now time.Time) model.Cart {
	items := make([]model.CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.ID != itemID {
			items = append(items, it)
		}
	}
	return model.Cart{Items: items, LastUpdated: now}
}

// Clear returns an empty cart.
func Clear(now time.Time) model.Cart {
	return Empty(now)
}

// Total is the sum of price times quantity over all lines.
func Total(c model.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// ItemCount is the sum of quantities over all lines.
func ItemCount(c model.Cart) int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Summarise pairs a cart with its derived total and item count.
func Summarise(c model.Cart) model.CartResponse {
	return model.CartResponse{
		Cart:      c,
		Total:     Total(c),
		ItemCount: ItemCount(c),
	}
}

func copyItems(items []model.CartItem) []model.CartItem {
	out := make([]model.CartItem, len(items), len(items)+1)
	copy(out, items)
	return out
}
