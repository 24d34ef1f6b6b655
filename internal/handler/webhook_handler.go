package handler

import (
	"errors"
	"io"
	"net/http"

	"wellspring/internal/model"
	"wellspring/internal/service"

	"github.com/rs/zerolog"
)

// maxWebhookBody bounds a single gateway delivery.
const maxWebhookBody = 64 << 10

// WebhookHandler receives payment gateway deliveries.
type WebhookHandler struct {
	service service.WebhookService
	logger  zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service service.WebhookService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger.With().Str("handler", "webhook").Logger(),
	}
}

// Stripe handles POST /api/webhooks/stripe. The raw body is passed through
// untouched since the signature covers its exact bytes. A non-2xx answer makes
// the gateway redeliver.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "unreadable webhook body", h.logger)
		return
	}

	err = h.service.HandleDelivery(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if errors.Is(err, model.ErrInvalidSignature) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidSignature, model.ErrInvalidSignature.Message, h.logger)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to process webhook delivery")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to process webhook", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
