package handler

import (
	"errors"
	"net/http"
	"strings"

	"wellspring/internal/model"
	"wellspring/internal/service"

	"github.com/rs/zerolog"
)

const defaultUploadFolder = "images"

// AdminHandler handles content management and order lookups for admins.
type AdminHandler struct {
	content        service.AdminContentService
	orders         service.OrderService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewAdminHandler creates a new admin handler. Uploads larger than
// maxUploadMB megabytes are rejected.
func NewAdminHandler(content service.AdminContentService, orders service.OrderService, maxUploadMB int, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		content:        content,
		orders:         orders,
		maxUploadBytes: int64(maxUploadMB) << 20,
		logger:         logger.With().Str("handler", "admin").Logger(),
	}
}

// ListPages handles GET /api/admin/pages.
func (h *AdminHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.content.ListPages(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to list pages", h.logger)
		return
	}
	if pages == nil {
		pages = []model.Page{}
	}
	writeJSON(w, http.StatusOK, pages)
}

// GetPage handles GET /api/admin/pages/{id}, returning drafts too.
func (h *AdminHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	page, err := h.content.GetPageContent(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to load page", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreatePage handles POST /api/admin/pages.
func (h *AdminHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req model.PageRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	page, err := h.content.CreatePage(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "failed to create page", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

// UpdatePage handles PUT /api/admin/pages/{id}.
func (h *AdminHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.PageRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	page, err := h.content.UpdatePage(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err, "failed to update page", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// DeletePage handles DELETE /api/admin/pages/{id}.
func (h *AdminHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	if err := h.content.DeletePage(r.Context(), id); err != nil {
		writeServiceError(w, err, "failed to delete page", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSection handles POST /api/admin/pages/{id}/sections.
func (h *AdminHandler) CreateSection(w http.ResponseWriter, r *http.Request) {
	pageID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.SectionRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	section, err := h.content.CreateSection(r.Context(), pageID, &req)
	if err != nil {
		writeServiceError(w, err, "failed to create section", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, section)
}

// UpdateSection handles PUT /api/admin/sections/{id}.
func (h *AdminHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.SectionRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	section, err := h.content.UpdateSection(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err, "failed to update section", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, section)
}

// DeleteSection handles DELETE /api/admin/sections/{id}.
func (h *AdminHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	if err := h.content.DeleteSection(r.Context(), id); err != nil {
		writeServiceError(w, err, "failed to delete section", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateBlock handles POST /api/admin/sections/{id}/blocks.
func (h *AdminHandler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	sectionID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.BlockRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	block, err := h.content.CreateBlock(r.Context(), sectionID, &req)
	if err != nil {
		writeServiceError(w, err, "failed to create block", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

// UpdateBlock handles PUT /api/admin/blocks/{id}.
func (h *AdminHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.BlockRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	block, err := h.content.UpdateBlock(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err, "failed to update block", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, block)
}

// DeleteBlock handles DELETE /api/admin/blocks/{id}.
func (h *AdminHandler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	if err := h.content.DeleteBlock(r.Context(), id); err != nil {
		writeServiceError(w, err, "failed to delete block", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpsertTranslation handles PUT /api/admin/blocks/{id}/translations/{lang}.
func (h *AdminHandler) UpsertTranslation(w http.ResponseWriter, r *http.Request) {
	blockID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.TranslationRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	tr, err := h.content.UpsertTranslation(r.Context(), blockID, r.PathValue("lang"), &req)
	if err != nil {
		writeServiceError(w, err, "failed to save translation", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// DeleteTranslation handles DELETE /api/admin/blocks/{id}/translations/{lang}.
func (h *AdminHandler) DeleteTranslation(w http.ResponseWriter, r *http.Request) {
	blockID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	if err := h.content.DeleteTranslation(r.Context(), blockID, r.PathValue("lang")); err != nil {
		writeServiceError(w, err, "failed to delete translation", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadMedia handles POST /api/admin/media with a multipart "file" field and
// an optional "folder" field.
func (h *AdminHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, model.ErrCodeUnsupportedMedia, "upload is too large", h.logger)
			return
		}
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "multipart form expected", h.logger)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "file is required", h.logger)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		writeError(w, http.StatusBadRequest, model.ErrCodeUnsupportedMedia, "upload is too large", h.logger)
		return
	}

	folder := strings.Trim(r.FormValue("folder"), "/")
	if folder == "" {
		folder = defaultUploadFolder
	}

	resp, err := h.content.UploadImage(r.Context(), folder, file, header.Size)
	if err != nil {
		writeServiceError(w, err, "failed to upload image", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListOrders handles GET /api/admin/orders with pagination.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pagination(w, r, h.logger)
	if !ok {
		return
	}
	orders, err := h.orders.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, "failed to list orders", h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /api/admin/orders/{id}.
func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve order", h.logger)
		return
	}
	if order == nil {
		writeServiceError(w, model.ErrOrderNotFound, "order not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
