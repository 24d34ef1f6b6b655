package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"wellspring/internal/content"
	"wellspring/internal/model"
	"wellspring/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// pageLoadTimeout bounds a shared page load.
const pageLoadTimeout = 10 * time.Second

// contentService implements ContentService.
type contentService struct {
	repo               repository.ContentRepository
	defaultLanguage    string
	supportedLanguages []string
	loads              singleflight.Group
	logger             zerolog.Logger
}

// pageLoad is everything stored for one page.
type pageLoad struct {
	page     model.Page
	sections []model.Section
	blocks   []model.Block
}

// NewContentService creates a new content service. The default language is
// also the fallback for blocks lacking a translation in the requested one.
func NewContentService(
	repo repository.ContentRepository,
	defaultLanguage string,
	supportedLanguages []string,
	logger zerolog.Logger,
) ContentService {
	supported := make([]string, 0, len(supportedLanguages)+1)
	for _, l := range supportedLanguages {
		supported = append(supported, strings.ToLower(l))
	}
	defaultLanguage = strings.ToLower(defaultLanguage)
	if !slices.Contains(supported, defaultLanguage) {
		supported = append(supported, defaultLanguage)
	}

	return &contentService{
		repo:               repo,
		defaultLanguage:    defaultLanguage,
		supportedLanguages: supported,
		logger:             logger.With().Str("service", "content").Logger(),
	}
}

// GetPage resolves the published page slug in lang.
func (s *contentService) GetPage(ctx context.Context, slug, lang string) (*content.RenderTree, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = s.defaultLanguage
	}
	if !slices.Contains(s.supportedLanguages, lang) {
		s.logger.Debug().Str("lang", lang).Msg("unsupported language requested")
		return nil, model.ErrInvalidLanguage
	}

	v, err, shared := s.loads.Do(slug, func() (any, error) {
		// Shared by every caller waiting on slug; detached from the request that started it.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pageLoadTimeout)
		defer cancel()
		return s.load(loadCtx, slug)
	})
	if err != nil {
		return nil, err
	}

	loaded := v.(*pageLoad)
	if loaded == nil {
		return nil, model.ErrPageNotFound
	}

	tree := content.Resolve(loaded.page, loaded.sections, loaded.blocks, lang, s.defaultLanguage)

	s.logger.Debug().
		Str("slug", slug).
		Str("lang", lang).
		Bool("shared", shared).
		Int("sections", len(tree.Sections)).
		Msg("page resolved")

	return &tree, nil
}

func (s *contentService) load(ctx context.Context, slug string) (*pageLoad, error) {
	page, err := s.repo.GetPageBySlug(ctx, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get page")
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	if page == nil || page.Status != model.PageStatusPublished {
		return nil, nil
	}

	sections, blocks, err := s.repo.GetPageContent(ctx, page.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get page content")
		return nil, fmt.Errorf("failed to get page content: %w", err)
	}

	return &pageLoad{page: *page, sections: sections, blocks: blocks}, nil
}
