package handler

import (
	"net/http"

	"wellspring/internal/model"
	"wellspring/internal/service"

	"github.com/rs/zerolog"
)

// CatalogHandler handles product, service and availability requests.
type CatalogHandler struct {
	catalog service.CatalogService
	booking service.BookingService
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog service.CatalogService, booking service.BookingService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		booking: booking,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// ListProducts handles GET /api/products requests with pagination.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pagination(w, r, h.logger)
	if !ok {
		return
	}

	products, err := h.catalog.ListProducts(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve products", h.logger)
		return
	}
	if products == nil {
		products = []model.Product{}
	}

	writeJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{slug} requests.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, err, "failed to retrieve product", h.logger)
		return
	}
	if product == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeItemNotFound, "product not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// ListServices handles GET /api/services requests with pagination.
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pagination(w, r, h.logger)
	if !ok {
		return
	}

	services, err := h.catalog.ListServices(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve services", h.logger)
		return
	}
	if services == nil {
		services = []model.Service{}
	}

	writeJSON(w, http.StatusOK, services)
}

// GetService handles GET /api/services/{slug} requests.
func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.catalog.GetService(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, err, "failed to retrieve service", h.logger)
		return
	}
	if svc == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeItemNotFound, "service not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, svc)
}

// Availability handles GET /api/services/{slug}/availability?date= requests.
func (h *CatalogHandler) Availability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "date is required", h.logger)
		return
	}

	availability, err := h.booking.Availability(r.Context(), r.PathValue("slug"), date)
	if err != nil {
		writeServiceError(w, err, "failed to compute availability", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, availability)
}
