package handler

import (
	"net/http"

	"wellspring/internal/model"
	"wellspring/internal/service"

	"github.com/rs/zerolog"
)

// PageHandler serves published pages.
type PageHandler struct {
	service service.ContentService
	logger  zerolog.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(service service.ContentService, logger zerolog.Logger) *PageHandler {
	return &PageHandler{
		service: service,
		logger:  logger.With().Str("handler", "page").Logger(),
	}
}

// Get handles GET /api/pages/{slug}?lang= requests.
func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "page slug is required", h.logger)
		return
	}

	tree, err := h.service.GetPage(r.Context(), slug, r.URL.Query().Get("lang"))
	if err != nil {
		writeServiceError(w, err, "failed to load page", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, tree)
}
