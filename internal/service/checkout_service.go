package service

import (
	"context"
	"fmt"
	"time"

	"wellspring/internal/model"
	"wellspring/internal/payment"
	"wellspring/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CheckoutConfig holds the gateway settings used for every checkout.
type CheckoutConfig struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	catalog CatalogService
	orders  repository.OrderRepository
	gateway payment.Gateway
	cfg     CheckoutConfig
	now     func() time.Time
	logger  zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	catalog CatalogService,
	orders repository.OrderRepository,
	gateway payment.Gateway,
	cfg CheckoutConfig,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		catalog: catalog,
		orders:  orders,
		gateway: gateway,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout re-prices the requested lines, creates a gateway session and
// stores the pending order carrying the session id.
func (s *checkoutService) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	lines := make([]model.OrderLine, 0, len(req.Items))
	total := decimal.Zero
	for i, item := range req.Items {
		resolved, err := s.catalog.ResolveCartItem(ctx, item)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int("item_index", i).
				Str("item_id", item.ID).
				Msg("checkout line rejected")
			return nil, err
		}

		lines = append(lines, model.OrderLine{
			ItemType:    resolved.Type,
			ItemID:      resolved.ID,
			Name:        resolved.Name,
			Quantity:    item.Quantity,
			Price:       resolved.Price,
			BookingDate: resolved.BookingDate,
			BookingTime: resolved.BookingTime,
			Duration:    resolved.Duration,
		})
		total = total.Add(resolved.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	orderID := uuid.New()
	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutInput{
		OrderID:       orderID.String(),
		CustomerEmail: req.CustomerEmail,
		Currency:      s.cfg.Currency,
		Lines:         lines,
		SuccessURL:    s.cfg.SuccessURL,
		CancelURL:     s.cfg.CancelURL,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to create checkout session")
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	now := s.now()
	order := &model.Order{
		ID:              orderID,
		UserID:          req.UserID,
		CustomerEmail:   req.CustomerEmail,
		Status:          model.OrderStatusPending,
		StripeSessionID: session.ID,
		Total:           total,
		Currency:        s.cfg.Currency,
		Metadata:        model.OrderMetadata{Lines: lines},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("session_id", session.ID).
			Msg("failed to store pending order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("session_id", session.ID).
		Int("line_count", len(lines)).
		Str("total", total.StringFixed(2)).
		Msg("checkout started")

	return &model.CheckoutResponse{
		OrderID:   orderID,
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

// GetBySession returns the order status for a gateway session.
func (s *checkoutService) GetBySession(ctx context.Context, sessionID string) (*model.OrderStatusResponse, error) {
	order, err := s.orders.FindBySessionID(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	return &model.OrderStatusResponse{
		OrderID:  order.ID,
		Status:   order.Status,
		Total:    order.Total,
		Currency: order.Currency,
	}, nil
}

// validateCheckoutRequest validates the checkout request.
func validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil || len(req.Items) == 0 {
		return model.ErrEmptyCheckout
	}

	for _, item := range req.Items {
		if item.ID == "" {
			return model.NewDomainError(model.ErrCodeMissingField, "Item id is required")
		}
		if !item.Type.Valid() {
			return model.ErrInvalidItemType
		}
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
		if item.Type == model.ItemTypeService && item.BookingDate == "" {
			return model.ErrBookingRequired
		}
	}

	return nil
}
