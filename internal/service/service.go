package service

import (
	"context"
	"io"

	"wellspring/internal/content"
	"wellspring/internal/model"

	"github.com/google/uuid"
)

// ContentService renders published pages.
type ContentService interface {
	// GetPage resolves the published page slug in lang. An empty lang selects
	// the default language.
	GetPage(ctx context.Context, slug, lang string) (*content.RenderTree, error)
}

// CatalogService defines read operations over products and services.
type CatalogService interface {
	ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error)
	GetProduct(ctx context.Context, slug string) (*model.Product, error)
	ListServices(ctx context.Context, limit, offset int) ([]model.Service, error)
	GetService(ctx context.Context, slug string) (*model.Service, error)

	// ResolveCartItem validates req and fills a cart line from the catalog.
	ResolveCartItem(ctx context.Context, req model.AddToCartRequest) (model.CartItem, error)
}

// CheckoutService defines operations for starting and following a checkout.
type CheckoutService interface {
	// Checkout re-prices the requested lines, creates a gateway session and
	// stores the pending order.
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// GetBySession returns the order status for a gateway session.
	GetBySession(ctx context.Context, sessionID string) (*model.OrderStatusResponse, error)
}

// WebhookService applies payment gateway deliveries to orders.
type WebhookService interface {
	// HandleDelivery verifies and processes one raw delivery. It returns
	// model.ErrInvalidSignature for unauthenticated payloads; any other error
	// means the delivery should be retried.
	HandleDelivery(ctx context.Context, payload []byte, signature string) error
}

// BookingService answers availability questions for bookable services.
type BookingService interface {
	Availability(ctx context.Context, serviceSlug, date string) (*model.AvailabilityResponse, error)
}

// AdminContentService defines content management operations.
type AdminContentService interface {
	ListPages(ctx context.Context) ([]model.Page, error)
	GetPageContent(ctx context.Context, id uuid.UUID) (*model.PageContent, error)
	CreatePage(ctx context.Context, req *model.PageRequest) (*model.Page, error)
	UpdatePage(ctx context.Context, id uuid.UUID, req *model.PageRequest) (*model.Page, error)
	DeletePage(ctx context.Context, id uuid.UUID) error

	CreateSection(ctx context.Context, pageID uuid.UUID, req *model.SectionRequest) (*model.Section, error)
	UpdateSection(ctx context.Context, id uuid.UUID, req *model.SectionRequest) (*model.Section, error)
	DeleteSection(ctx context.Context, id uuid.UUID) error

	CreateBlock(ctx context.Context, sectionID uuid.UUID, req *model.BlockRequest) (*model.Block, error)
	UpdateBlock(ctx context.Context, id uuid.UUID, req *model.BlockRequest) (*model.Block, error)
	DeleteBlock(ctx context.Context, id uuid.UUID) error

	UpsertTranslation(ctx context.Context, blockID uuid.UUID, lang string, req *model.TranslationRequest) (*model.BlockTranslation, error)
	DeleteTranslation(ctx context.Context, blockID uuid.UUID, lang string) error

	// UploadImage stores an image under folder and returns its public URL.
	UploadImage(ctx context.Context, folder string, body io.Reader, size int64) (*model.UploadResponse, error)
}

// OrderService defines admin order lookups.
type OrderService interface {
	// GetByID retrieves an order by its ID with all items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// List retrieves orders, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Order, error)
}

// ProfileService resolves the profile of an authenticated caller.
type ProfileService interface {
	// Me returns the caller with their profile, creating the profile on first use.
	Me(ctx context.Context, principal model.Principal) (*model.MeResponse, error)

	// IsAdmin reports whether the user holds the admin role.
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}
