package service

import (
	"context"
	"fmt"
	"time"

	"wellspring/internal/model"
	"wellspring/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	bookingDateLayout = "2006-01-02"
	bookingTimeLayout = "15:04"
)

// catalogService implements CatalogService.
type catalogService struct {
	repo   repository.CatalogRepository
	logger zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.CatalogRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		logger: logger.With().Str("service", "catalog").Logger(),
	}
}

// ListProducts retrieves active products with pagination.
func (s *catalogService) ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	limit, offset = normalisePage(limit, offset)

	products, err := s.repo.ListProducts(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")
	return products, nil
}

// GetProduct retrieves an active product by slug. Returns nil when absent.
func (s *catalogService) GetProduct(ctx context.Context, slug string) (*model.Product, error) {
	product, err := s.repo.GetProductBySlug(ctx, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// ListServices retrieves active services with pagination.
func (s *catalogService) ListServices(ctx context.Context, limit, offset int) ([]model.Service, error) {
	limit, offset = normalisePage(limit, offset)

	services, err := s.repo.ListServices(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to list services")
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	s.logger.Debug().Int("count", len(services)).Msg("retrieved services")
	return services, nil
}

// GetService retrieves an active service by slug. Returns nil when absent.
func (s *catalogService) GetService(ctx context.Context, slug string) (*model.Service, error) {
	svc, err := s.repo.GetServiceBySlug(ctx, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get service")
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return svc, nil
}

// ResolveCartItem validates req and fills the line's name, price, image and
// duration from the catalog. Inactive or unknown items yield model.ErrItemNotFound.
func (s *catalogService) ResolveCartItem(ctx context.Context, req model.AddToCartRequest) (model.CartItem, error) {
	if !req.Type.Valid() {
		return model.CartItem{}, model.ErrInvalidItemType
	}
	if err := validateBooking(req); err != nil {
		return model.CartItem{}, err
	}

	item, err := s.lookup(ctx, req.Type, req.ID)
	if err != nil {
		return model.CartItem{}, err
	}

	line := model.CartItem{
		ID:       item.ID.String(),
		Type:     item.Type,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: req.Quantity,
		Image:    item.ImageURL,
		Slug:     item.Slug,
	}
	if item.Type == model.ItemTypeService {
		line.BookingDate = req.BookingDate
		line.BookingTime = req.BookingTime
		line.Duration = item.DurationMinutes
	}
	return line, nil
}

func (s *catalogService) lookup(ctx context.Context, itemType model.ItemType, rawID string) (*model.CatalogItem, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		s.logger.Debug().Str("item_id", rawID).Msg("malformed catalog id")
		return nil, model.ErrItemNotFound
	}

	switch itemType {
	case model.ItemTypeProduct:
		p, err := s.repo.GetProductByID(ctx, id)
		if err != nil {
			s.logger.Error().Err(err).Str("item_id", rawID).Msg("failed to get product")
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		if p == nil || !p.Active {
			return nil, model.ErrItemNotFound
		}
		item := p.ProductItem()
		return &item, nil
	default:
		svc, err := s.repo.GetServiceByID(ctx, id)
		if err != nil {
			s.logger.Error().Err(err).Str("item_id", rawID).Msg("failed to get service")
			return nil, fmt.Errorf("failed to get service: %w", err)
		}
		if svc == nil || !svc.Active {
			return nil, model.ErrItemNotFound
		}
		item := svc.ServiceItem()
		return &item, nil
	}
}

// validateBooking checks the booking fields of a line. Products carry none;
// a service may omit both but a time needs a date.
func validateBooking(req model.AddToCartRequest) error {
	if req.Type == model.ItemTypeProduct {
		if req.BookingDate != "" || req.BookingTime != "" {
			return model.ErrInvalidBooking
		}
		return nil
	}

	if req.BookingDate == "" {
		if req.BookingTime != "" {
			return model.ErrInvalidBooking
		}
		return nil
	}
	if _, err := time.Parse(bookingDateLayout, req.BookingDate); err != nil {
		return model.ErrInvalidBooking
	}
	if req.BookingTime != "" {
		if _, err := time.Parse(bookingTimeLayout, req.BookingTime); err != nil {
			return model.ErrInvalidBooking
		}
	}
	return nil
}

func normalisePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
