package handler

import (
	"context"
	"io"

	"wellspring/internal/content"
	"wellspring/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockContentService is a mock implementation of service.ContentService.
type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) GetPage(ctx context.Context, slug, lang string) (*content.RenderTree, error) {
	args := m.Called(ctx, slug, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.RenderTree), args.Error(1)
}

// MockCatalogService is a mock implementation of service.CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, slug string) (*model.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) ListServices(ctx context.Context, limit, offset int) ([]model.Service, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Service), args.Error(1)
}

func (m *MockCatalogService) GetService(ctx context.Context, slug string) (*model.Service, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Service), args.Error(1)
}

func (m *MockCatalogService) ResolveCartItem(ctx context.Context, req model.AddToCartRequest) (model.CartItem, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.CartItem), args.Error(1)
}

// MockBookingService is a mock implementation of service.BookingService.
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Availability(ctx context.Context, slug, date string) (*model.AvailabilityResponse, error) {
	args := m.Called(ctx, slug, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AvailabilityResponse), args.Error(1)
}

// MockCheckoutService is a mock implementation of service.CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResponse), args.Error(1)
}

func (m *MockCheckoutService) GetBySession(ctx context.Context, sessionID string) (*model.OrderStatusResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderStatusResponse), args.Error(1)
}

// MockWebhookService is a mock implementation of service.WebhookService.
type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) HandleDelivery(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)
	return args.Error(0)
}

// MockProfileService is a mock implementation of service.ProfileService.
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Me(ctx context.Context, principal model.Principal) (*model.MeResponse, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MeResponse), args.Error(1)
}

func (m *MockProfileService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockAdminContentService is a mock implementation of service.AdminContentService.
type MockAdminContentService struct {
	mock.Mock
}

func (m *MockAdminContentService) ListPages(ctx context.Context) ([]model.Page, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Page), args.Error(1)
}

func (m *MockAdminContentService) GetPageContent(ctx context.Context, id uuid.UUID) (*model.PageContent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PageContent), args.Error(1)
}

func (m *MockAdminContentService) CreatePage(ctx context.Context, req *model.PageRequest) (*model.Page, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page), args.Error(1)
}

func (m *MockAdminContentService) UpdatePage(ctx context.Context, id uuid.UUID, req *model.PageRequest) (*model.Page, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page), args.Error(1)
}

func (m *MockAdminContentService) DeletePage(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdminContentService) CreateSection(ctx context.Context, pageID uuid.UUID, req *model.SectionRequest) (*model.Section, error) {
	args := m.Called(ctx, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Section), args.Error(1)
}

func (m *MockAdminContentService) UpdateSection(ctx context.Context, id uuid.UUID, req *model.SectionRequest) (*model.Section, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Section), args.Error(1)
}

func (m *MockAdminContentService) DeleteSection(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdminContentService) CreateBlock(ctx context.Context, sectionID uuid.UUID, req *model.BlockRequest) (*model.Block, error) {
	args := m.Called(ctx, sectionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Block), args.Error(1)
}

func (m *MockAdminContentService) UpdateBlock(ctx context.Context, id uuid.UUID, req *model.BlockRequest) (*model.Block, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Block), args.Error(1)
}

func (m *MockAdminContentService) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdminContentService) UpsertTranslation(ctx context.Context, blockID uuid.UUID, lang string, req *model.TranslationRequest) (*model.BlockTranslation, error) {
	args := m.Called(ctx, blockID, lang, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BlockTranslation), args.Error(1)
}

func (m *MockAdminContentService) DeleteTranslation(ctx context.Context, blockID uuid.UUID, lang string) error {
	return m.Called(ctx, blockID, lang).Error(0)
}

func (m *MockAdminContentService) UploadImage(ctx context.Context, folder string, body io.Reader, size int64) (*model.UploadResponse, error) {
	data, _ := io.ReadAll(body)
	args := m.Called(ctx, folder, data, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadResponse), args.Error(1)
}
