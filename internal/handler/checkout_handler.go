package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"wellspring/internal/cart"
	"wellspring/internal/middleware"
	"wellspring/internal/model"
	"wellspring/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler starts payment sessions and reports their outcome.
type CheckoutHandler struct {
	checkout service.CheckoutService
	cart     cart.Service
	logger   zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(checkout service.CheckoutService, cartService cart.Service, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		cart:     cartService,
		logger:   logger.With().Str("handler", "checkout").Logger(),
	}
}

// Checkout handles POST /api/checkout requests. When the body lists no items
// the session cart is checked out instead.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if len(req.Items) == 0 {
		session := middleware.SessionFromContext(r.Context())
		req.Items = requestsFromCart(h.cart.Get(r.Context(), session))
	}

	if principal, ok := middleware.PrincipalFromContext(r.Context()); ok {
		userID := principal.UserID
		req.UserID = &userID
		if req.CustomerEmail == "" {
			req.CustomerEmail = principal.Email
		}
	}

	resp, err := h.checkout.Checkout(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "failed to start checkout", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// SessionStatus handles GET /api/checkout/sessions/{sessionId} requests.
func (h *CheckoutHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "session id is required", h.logger)
		return
	}

	status, err := h.checkout.GetBySession(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve order status", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func requestsFromCart(c model.Cart) []model.AddToCartRequest {
	reqs := make([]model.AddToCartRequest, 0, len(c.Items))
	for _, item := range c.Items {
		reqs = append(reqs, model.AddToCartRequest{
			ID:          item.ID,
			Type:        item.Type,
			Quantity:    item.Quantity,
			BookingDate: item.BookingDate,
			BookingTime: item.BookingTime,
		})
	}
	return reqs
}
