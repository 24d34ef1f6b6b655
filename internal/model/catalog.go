package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents an item sold in the shop.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Slug        string          `json:"slug" db:"slug"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    string          `json:"imageUrl,omitempty" db:"image_url"`
	Active      bool            `json:"active" db:"active"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// Service represents a bookable treatment or session.
type Service struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Slug            string          `json:"slug" db:"slug"`
	Name            string          `json:"name" db:"name"`
	Description     string          `json:"description,omitempty" db:"description"`
	Price           decimal.Decimal `json:"price" db:"price"`
	DurationMinutes int             `json:"durationMinutes" db:"duration_minutes"`
	ImageURL        string          `json:"imageUrl,omitempty" db:"image_url"`
	Active          bool            `json:"active" db:"active"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}

// CatalogItem is the catalog view of a product or service used when pricing cart lines.
type CatalogItem struct {
	ID              uuid.UUID
	Type            ItemType
	Slug            string
	Name            string
	Price           decimal.Decimal
	ImageURL        string
	DurationMinutes int
}

// ProductItem converts a product into its catalog view.
func (p Product) ProductItem() CatalogItem {
	return CatalogItem{
		ID:       p.ID,
		Type:     ItemTypeProduct,
		Slug:     p.Slug,
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}
}

// ServiceItem converts a service into its catalog view.
func (s Service) ServiceItem() CatalogItem {
	return CatalogItem{
		ID:              s.ID,
		Type:            ItemTypeService,
		Slug:            s.Slug,
		Name:            s.Name,
		Price:           s.Price,
		ImageURL:        s.ImageURL,
		DurationMinutes: s.DurationMinutes,
	}
}

// TimeSlot is a bookable start time for a service on a given day.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AvailabilityResponse lists the free slots of a service for one day.
type AvailabilityResponse struct {
	Service string     `json:"service"`
	Date    string     `json:"date"`
	Slots   []TimeSlot `json:"slots"`
}
