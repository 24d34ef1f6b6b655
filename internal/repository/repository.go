package repository

import (
	"context"

	"wellspring/internal/model"
	"wellspring/internal/payment"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ContentRepository defines data access for pages, sections, blocks and translations.
type ContentRepository interface {
	// GetPageBySlug retrieves a page by slug. Returns nil when absent.
	GetPageBySlug(ctx context.Context, slug string) (*model.Page, error)

	// GetPageByID retrieves a page by id. Returns nil when absent.
	GetPageByID(ctx context.Context, id uuid.UUID) (*model.Page, error)

	// ListPages retrieves every page ordered by slug.
	ListPages(ctx context.Context) ([]model.Page, error)

	// GetPageContent retrieves all sections of a page and all their blocks,
	// each block carrying its translations.
	GetPageContent(ctx context.Context, pageID uuid.UUID) ([]model.Section, []model.Block, error)

	CreatePage(ctx context.Context, page *model.Page) error
	UpdatePage(ctx context.Context, page *model.Page) error
	DeletePage(ctx context.Context, id uuid.UUID) error

	GetSection(ctx context.Context, id uuid.UUID) (*model.Section, error)
	CreateSection(ctx context.Context, section *model.Section) error
	UpdateSection(ctx context.Context, section *model.Section) error
	DeleteSection(ctx context.Context, id uuid.UUID) error

	GetBlock(ctx context.Context, id uuid.UUID) (*model.Block, error)
	CreateBlock(ctx context.Context, block *model.Block) error
	UpdateBlock(ctx context.Context, block *model.Block) error
	DeleteBlock(ctx context.Context, id uuid.UUID) error

	// UpsertTranslation inserts or replaces the translation of a block in one language.
	UpsertTranslation(ctx context.Context, translation *model.BlockTranslation) error

	// DeleteTranslation removes the translation of a block in one language.
	DeleteTranslation(ctx context.Context, blockID uuid.UUID, lang string) error
}

// CatalogRepository defines read access to products and services.
type CatalogRepository interface {
	// ListProducts retrieves active products with pagination support.
	ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// ListServices retrieves active services with pagination support.
	ListServices(ctx context.Context, limit, offset int) ([]model.Service, error)
	GetServiceBySlug(ctx context.Context, slug string) (*model.Service, error)
	GetServiceByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
}

// OrderRepository defines data access for orders and their items.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order.
	CreateOrder(ctx context.Context, order *model.Order) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// FindBySessionID retrieves the order created for a checkout session.
	FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error)

	// FindByPaymentIntentID retrieves the order paid by a payment intent.
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Order, error)

	// List retrieves orders, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Order, error)

	// ApplyTransition moves an order from t.From to t.To within tx and inserts
	// t.Items. Returns false without error when the order is no longer in t.From.
	ApplyTransition(ctx context.Context, tx pgx.Tx, t payment.Transition) (bool, error)
}

// WebhookEventRepository records processed gateway events.
type WebhookEventRepository interface {
	// Exists reports whether the event was already processed.
	Exists(ctx context.Context, id string) (bool, error)

	// Record inserts the event within tx. Returns false when it was already recorded.
	Record(ctx context.Context, tx pgx.Tx, event model.WebhookEvent) (bool, error)
}

// ProfileRepository defines data access for user profiles.
type ProfileRepository interface {
	// GetByID retrieves a profile. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)

	// EnsureExists creates a profile with the user role unless one exists,
	// then returns the stored profile.
	EnsureExists(ctx context.Context, id uuid.UUID, email string) (*model.Profile, error)
}
