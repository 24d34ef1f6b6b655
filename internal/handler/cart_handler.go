package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"wellspring/internal/cart"
	"wellspring/internal/middleware"
	"wellspring/internal/model"
	"wellspring/internal/service"

	"github.com/rs/zerolog"
)

// keepAliveInterval is how often an idle event stream receives a comment line.
const keepAliveInterval = 25 * time.Second

// CartHandler handles cart requests for the session attached by middleware.CartSession.
type CartHandler struct {
	cart    cart.Service
	catalog service.CatalogService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cartService cart.Service, catalog service.CatalogService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cart:    cartService,
		catalog: catalog,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, cart.Summarise(h.cart.Get(r.Context(), session)))
}

// AddItem handles POST /api/cart/items requests. Name, price and duration are
// taken from the catalog, never from the client.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req model.AddToCartRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "item id is required", h.logger)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		writeServiceError(w, model.ErrInvalidQuantity, "failed to add item", h.logger)
		return
	}

	item, err := h.catalog.ResolveCartItem(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "failed to add item", h.logger)
		return
	}

	session := middleware.SessionFromContext(r.Context())
	c := h.cart.Add(r.Context(), session, item, req.Quantity)
	writeJSON(w, http.StatusOK, cart.Summarise(c))
}

// UpdateItem handles PATCH /api/cart/items/{id} requests. A quantity of zero
// or less removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateQuantityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	session := middleware.SessionFromContext(r.Context())
	c := h.cart.UpdateQuantity(r.Context(), session, r.PathValue("id"), req.Quantity)
	writeJSON(w, http.StatusOK, cart.Summarise(c))
}

// RemoveItem handles DELETE /api/cart/items/{id} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	c := h.cart.Remove(r.Context(), session, r.PathValue("id"))
	writeJSON(w, http.StatusOK, cart.Summarise(c))
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	c := h.cart.Clear(r.Context(), session)
	writeJSON(w, http.StatusOK, cart.Summarise(c))
}

// Events handles GET /api/cart/events, streaming the cart summary as
// server-sent events whenever the session's cart changes.
func (h *CartHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "streaming unsupported", h.logger)
		return
	}

	// The stream outlives the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	session := middleware.SessionFromContext(r.Context())
	updates, unsubscribe := h.cart.Subscribe(session)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, cart.Summarise(h.cart.Get(r.Context(), session))); err != nil {
		return
	}
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case summary, open := <-updates:
			if !open {
				return
			}
			if err := writeEvent(w, summary); err != nil {
				h.logger.Debug().Err(err).Str("session", session).Msg("cart stream closed")
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, summary model.CartResponse) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: cart\ndata: %s\n\n", data)
	return err
}
