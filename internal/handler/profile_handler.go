package handler

import (
	"net/http"

	"wellspring/internal/middleware"
	"wellspring/internal/model"
	"wellspring/internal/service"

	"github.com/rs/zerolog"
)

// ProfileHandler serves the authenticated caller's identity.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("handler", "profile").Logger(),
	}
}

// Me handles GET /api/me requests.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeServiceError(w, model.ErrUnauthorised, "authentication required", h.logger)
		return
	}

	me, err := h.service.Me(r.Context(), *principal)
	if err != nil {
		writeServiceError(w, err, "failed to load profile", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, me)
}
