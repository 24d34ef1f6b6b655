package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"time"

	"wellspring/internal/content"
	"wellspring/internal/media"
	"wellspring/internal/model"
	"wellspring/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 512

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// adminContentService implements AdminContentService.
type adminContentService struct {
	repo      repository.ContentRepository
	storage   media.Storage
	languages []string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewAdminContentService creates a new content management service. Translations
// are accepted for languages only.
func NewAdminContentService(
	repo repository.ContentRepository,
	storage media.Storage,
	languages []string,
	logger zerolog.Logger,
) AdminContentService {
	normalised := make([]string, len(languages))
	for i, l := range languages {
		normalised[i] = strings.ToLower(l)
	}
	return &adminContentService{
		repo:      repo,
		storage:   storage,
		languages: normalised,
		now:       time.Now,
		logger:    logger.With().Str("service", "admin_content").Logger(),
	}
}

func (s *adminContentService) ListPages(ctx context.Context) ([]model.Page, error) {
	pages, err := s.repo.ListPages(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list pages")
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return pages, nil
}

// GetPageContent returns a page with all sections and blocks, drafts and
// invisible sections included.
func (s *adminContentService) GetPageContent(ctx context.Context, id uuid.UUID) (*model.PageContent, error) {
	page, err := s.repo.GetPageByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("page_id", id.String()).Msg("failed to get page")
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	if page == nil {
		return nil, model.ErrPageNotFound
	}

	sections, blocks, err := s.repo.GetPageContent(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("page_id", id.String()).Msg("failed to get page content")
		return nil, fmt.Errorf("failed to get page content: %w", err)
	}

	return &model.PageContent{Page: *page, Sections: sections, Blocks: blocks}, nil
}

func (s *adminContentService) CreatePage(ctx context.Context, req *model.PageRequest) (*model.Page, error) {
	if err := validatePageRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	page := &model.Page{
		ID:          uuid.New(),
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Status:      pageStatus(req.Status),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreatePage(ctx, page); err != nil {
		return nil, s.wrap(err, "create page")
	}

	s.logger.Info().Str("page_id", page.ID.String()).Str("slug", page.Slug).Msg("page created")
	return page, nil
}

func (s *adminContentService) UpdatePage(ctx context.Context, id uuid.UUID, req *model.PageRequest) (*model.Page, error) {
	if err := validatePageRequest(req); err != nil {
		return nil, err
	}

	page, err := s.repo.GetPageByID(ctx, id)
	if err != nil {
		return nil, s.wrap(err, "get page")
	}
	if page == nil {
		return nil, model.ErrPageNotFound
	}

	page.Slug = req.Slug
	page.Title = req.Title
	page.Description = req.Description
	page.Status = pageStatus(req.Status)
	page.UpdatedAt = s.now()

	if err := s.repo.UpdatePage(ctx, page); err != nil {
		return nil, s.wrap(err, "update page")
	}

	s.logger.Info().Str("page_id", id.String()).Str("status", string(page.Status)).Msg("page updated")
	return page, nil
}

func (s *adminContentService) DeletePage(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePage(ctx, id); err != nil {
		return s.wrap(err, "delete page")
	}
	s.logger.Info().Str("page_id", id.String()).Msg("page deleted")
	return nil
}

func (s *adminContentService) CreateSection(ctx context.Context, pageID uuid.UUID, req *model.SectionRequest) (*model.Section, error) {
	settings, err := validateSectionRequest(req)
	if err != nil {
		return nil, err
	}

	page, err := s.repo.GetPageByID(ctx, pageID)
	if err != nil {
		return nil, s.wrap(err, "get page")
	}
	if page == nil {
		return nil, model.ErrPageNotFound
	}

	now := s.now()
	section := &model.Section{
		ID:        uuid.New(),
		PageID:    pageID,
		Type:      req.Type,
		Position:  req.Position,
		Visible:   req.Visible == nil || *req.Visible,
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateSection(ctx, section); err != nil {
		return nil, s.wrap(err, "create section")
	}
	return section, nil
}

func (s *adminContentService) UpdateSection(ctx context.Context, id uuid.UUID, req *model.SectionRequest) (*model.Section, error) {
	settings, err := validateSectionRequest(req)
	if err != nil {
		return nil, err
	}

	section, err := s.repo.GetSection(ctx, id)
	if err != nil {
		return nil, s.wrap(err, "get section")
	}
	if section == nil {
		return nil, model.ErrSectionNotFound
	}

	section.Type = req.Type
	section.Position = req.Position
	if req.Visible != nil {
		section.Visible = *req.Visible
	}
	section.Settings = settings
	section.UpdatedAt = s.now()

	if err := s.repo.UpdateSection(ctx, section); err != nil {
		return nil, s.wrap(err, "update section")
	}
	return section, nil
}

func (s *adminContentService) DeleteSection(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteSection(ctx, id); err != nil {
		return s.wrap(err, "delete section")
	}
	return nil
}

func (s *adminContentService) CreateBlock(ctx context.Context, sectionID uuid.UUID, req *model.BlockRequest) (*model.Block, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Block is required")
	}

	section, err := s.repo.GetSection(ctx, sectionID)
	if err != nil {
		return nil, s.wrap(err, "get section")
	}
	if section == nil {
		return nil, model.ErrSectionNotFound
	}

	now := s.now()
	block := &model.Block{
		ID:           uuid.New(),
		SectionID:    sectionID,
		Type:         blockType(req.Type),
		Position:     req.Position,
		Content:      req.Content,
		Translations: []model.BlockTranslation{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateBlock(ctx, block); err != nil {
		return nil, s.wrap(err, "create block")
	}
	return block, nil
}

func (s *adminContentService) UpdateBlock(ctx context.Context, id uuid.UUID, req *model.BlockRequest) (*model.Block, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Block is required")
	}

	block, err := s.repo.GetBlock(ctx, id)
	if err != nil {
		return nil, s.wrap(err, "get block")
	}
	if block == nil {
		return nil, model.ErrBlockNotFound
	}

	block.Type = blockType(req.Type)
	block.Position = req.Position
	block.Content = req.Content
	block.UpdatedAt = s.now()

	if err := s.repo.UpdateBlock(ctx, block); err != nil {
		return nil, s.wrap(err, "update block")
	}
	return block, nil
}

func (s *adminContentService) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteBlock(ctx, id); err != nil {
		return s.wrap(err, "delete block")
	}
	return nil
}

// UpsertTranslation creates or replaces the translation of a block in lang.
func (s *adminContentService) UpsertTranslation(ctx context.Context, blockID uuid.UUID, lang string, req *model.TranslationRequest) (*model.BlockTranslation, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !slices.Contains(s.languages, lang) {
		return nil, model.ErrInvalidLanguage
	}
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Translation is required")
	}

	block, err := s.repo.GetBlock(ctx, blockID)
	if err != nil {
		return nil, s.wrap(err, "get block")
	}
	if block == nil {
		return nil, model.ErrBlockNotFound
	}

	translation := &model.BlockTranslation{
		BlockID:   blockID,
		Lang:      lang,
		Content:   req.Content,
		UpdatedAt: s.now(),
	}
	if err := s.repo.UpsertTranslation(ctx, translation); err != nil {
		return nil, s.wrap(err, "upsert translation")
	}

	s.logger.Debug().Str("block_id", blockID.String()).Str("lang", lang).Msg("translation saved")
	return translation, nil
}

func (s *adminContentService) DeleteTranslation(ctx context.Context, blockID uuid.UUID, lang string) error {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if err := s.repo.DeleteTranslation(ctx, blockID, lang); err != nil {
		return s.wrap(err, "delete translation")
	}
	return nil
}

// UploadImage sniffs the upload, stores it under folder and returns its key and URL.
func (s *adminContentService) UploadImage(ctx context.Context, folder string, body io.Reader, size int64) (*model.UploadResponse, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		s.logger.Error().Err(err).Msg("failed to read upload")
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType, ext, err := media.DetectImageType(head)
	if err != nil {
		s.logger.Warn().Int("bytes", n).Msg("rejected upload of unsupported type")
		return nil, model.ErrUnsupportedMedia
	}

	key := media.NewObjectKey(folder, ext)
	url, err := s.storage.Put(ctx, key, contentType, io.MultiReader(bytes.NewReader(head), body), size)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to store upload")
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	s.logger.Info().Str("key", key).Str("content_type", contentType).Int64("size", size).Msg("image uploaded")
	return &model.UploadResponse{Key: key, URL: url}, nil
}

// wrap passes domain errors through and wraps everything else.
func (s *adminContentService) wrap(err error, action string) error {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.Error().Err(err).Str("action", action).Msg("content operation failed")
	return fmt.Errorf("failed to %s: %w", action, err)
}

func validatePageRequest(req *model.PageRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeMissingField, "Page is required")
	}
	if !slugPattern.MatchString(req.Slug) {
		return model.ErrInvalidSlug
	}
	if strings.TrimSpace(req.Title) == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Title is required")
	}
	switch req.Status {
	case "", model.PageStatusDraft, model.PageStatusPublished:
		return nil
	default:
		return model.NewDomainError(model.ErrCodeMissingField, "Status must be published or draft")
	}
}

// validateSectionRequest checks req and returns the settings document to store.
func validateSectionRequest(req *model.SectionRequest) (json.RawMessage, error) {
	if req == nil || req.Type == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Section type is required")
	}
	if !content.IsKnownSectionType(req.Type) {
		return nil, model.ErrUnknownSection
	}

	settings := bytes.TrimSpace(req.Settings)
	if len(settings) == 0 || bytes.Equal(settings, []byte("null")) {
		return json.RawMessage(`{}`), nil
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(settings, &object); err != nil {
		return nil, model.ErrInvalidSettings
	}
	return json.RawMessage(settings), nil
}

func pageStatus(status model.PageStatus) model.PageStatus {
	if status == "" {
		return model.PageStatusDraft
	}
	return status
}

func blockType(t string) string {
	if t == "" {
		return "text"
	}
	return t
}
