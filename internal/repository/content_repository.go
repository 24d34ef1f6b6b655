package repository

import (
	"context"
	"errors"
	"fmt"

	"wellspring/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// contentRepository implements the ContentRepository interface using PostgreSQL.
type contentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewContentRepository creates a new PostgreSQL-backed content repository.
func NewContentRepository(pool *pgxpool.Pool, logger zerolog.Logger) ContentRepository {
	return &contentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "content").Logger(),
	}
}

const pageColumns = `id, slug, title, description, status, created_at, updated_at`

const sectionColumns = `id, page_id, type, position, visible, settings, created_at, updated_at`

const blockColumns = `id, section_id, type, position, content, created_at, updated_at`

func scanPage(row pgx.Row) (*model.Page, error) {
	var p model.Page
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanSection(row pgx.Row) (*model.Section, error) {
	var s model.Section
	if err := row.Scan(&s.ID, &s.PageID, &s.Type, &s.Position, &s.Visible, &s.Settings, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanBlock(row pgx.Row) (*model.Block, error) {
	var b model.Block
	if err := row.Scan(&b.ID, &b.SectionID, &b.Type, &b.Position, &b.Content, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Translations = []model.BlockTranslation{}
	return &b, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// GetPageBySlug retrieves a page by slug.
func (r *contentRepository) GetPageBySlug(ctx context.Context, slug string) (*model.Page, error) {
	page, err := scanPage(r.pool.QueryRow(ctx, `SELECT `+pageColumns+` FROM pages WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("slug", slug).Msg("page not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to query page")
		return nil, fmt.Errorf("failed to query page: %w", err)
	}
	return page, nil
}

// GetPageByID retrieves a page by id.
func (r *contentRepository) GetPageByID(ctx context.Context, id uuid.UUID) (*model.Page, error) {
	page, err := scanPage(r.pool.QueryRow(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("page_id", id.String()).Msg("failed to query page")
		return nil, fmt.Errorf("failed to query page: %w", err)
	}
	return page, nil
}

// ListPages retrieves every page ordered by slug.
func (r *contentRepository) ListPages(ctx context.Context) ([]model.Page, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+pageColumns+` FROM pages ORDER BY slug`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query pages")
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	pages := []model.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan page row")
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating page rows")
		return nil, fmt.Errorf("error iterating pages: %w", err)
	}

	return pages, nil
}

// GetPageContent retrieves sections, blocks and translations of a page
// in three queries ordered by position.
func (r *contentRepository) GetPageContent(ctx context.Context, pageID uuid.UUID) ([]model.Section, []model.Block, error) {
	sections, err := r.querySections(ctx, pageID)
	if err != nil {
		return nil, nil, err
	}

	if len(sections) == 0 {
		return sections, []model.Block{}, nil
	}

	sectionIDs := make([]uuid.UUID, len(sections))
	for i, s := range sections {
		sectionIDs[i] = s.ID
	}

	blocks, err := r.queryBlocks(ctx, sectionIDs)
	if err != nil {
		return nil, nil, err
	}

	if err := r.attachTranslations(ctx, blocks); err != nil {
		return nil, nil, err
	}

	r.logger.Debug().
		Str("page_id", pageID.String()).
		Int("sections", len(sections)).
		Int("blocks", len(blocks)).
		Msg("page content loaded")

	return sections, blocks, nil
}

func (r *contentRepository) querySections(ctx context.Context, pageID uuid.UUID) ([]model.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE page_id = $1 ORDER BY position, created_at`

	rows, err := r.pool.Query(ctx, query, pageID)
	if err != nil {
		r.logger.Error().Err(err).Str("page_id", pageID.String()).Msg("failed to query sections")
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	sections := []model.Section{}
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan section row")
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sections: %w", err)
	}
	return sections, nil
}

func (r *contentRepository) queryBlocks(ctx context.Context, sectionIDs []uuid.UUID) ([]model.Block, error) {
	query := `SELECT ` + blockColumns + ` FROM blocks WHERE section_id = ANY($1) ORDER BY position, created_at`

	rows, err := r.pool.Query(ctx, query, sectionIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("sections", len(sectionIDs)).Msg("failed to query blocks")
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	blocks := []model.Block{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan block row")
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		blocks = append(blocks, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blocks: %w", err)
	}
	return blocks, nil
}

func (r *contentRepository) attachTranslations(ctx context.Context, blocks []model.Block) error {
	if len(blocks) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]int, len(blocks))
	blockIDs := make([]uuid.UUID, len(blocks))
	for i, b := range blocks {
		index[b.ID] = i
		blockIDs[i] = b.ID
	}

	query := `
		SELECT id, block_id, lang, content, updated_at
		FROM block_translations
		WHERE block_id = ANY($1)
		ORDER BY lang
	`

	rows, err := r.pool.Query(ctx, query, blockIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("blocks", len(blockIDs)).Msg("failed to query translations")
		return fmt.Errorf("failed to query translations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t model.BlockTranslation
		if err := rows.Scan(&t.ID, &t.BlockID, &t.Lang, &t.Content, &t.UpdatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan translation row")
			return fmt.Errorf("failed to scan translation: %w", err)
		}
		if i, ok := index[t.BlockID]; ok {
			blocks[i].Translations = append(blocks[i].Translations, t)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating translations: %w", err)
	}
	return nil
}

// CreatePage inserts a page. Returns model.ErrSlugTaken when the slug is in use.
func (r *contentRepository) CreatePage(ctx context.Context, page *model.Page) error {
	query := `
		INSERT INTO pages (id, slug, title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		page.ID, page.Slug, page.Title, page.Description, page.Status, page.CreatedAt, page.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrSlugTaken
		}
		r.logger.Error().Err(err).Str("slug", page.Slug).Msg("failed to create page")
		return fmt.Errorf("failed to create page: %w", err)
	}
	return nil
}

// UpdatePage replaces the editable fields of a page.
func (r *contentRepository) UpdatePage(ctx context.Context, page *model.Page) error {
	query := `
		UPDATE pages
		SET slug = $2, title = $3, description = $4, status = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		page.ID, page.Slug, page.Title, page.Description, page.Status, page.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrSlugTaken
		}
		r.logger.Error().Err(err).Str("page_id", page.ID.String()).Msg("failed to update page")
		return fmt.Errorf("failed to update page: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPageNotFound
	}
	return nil
}

// DeletePage removes a page with its sections, blocks and translations.
func (r *contentRepository) DeletePage(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "pages", id, model.ErrPageNotFound)
}

// GetSection retrieves a section by id.
func (r *contentRepository) GetSection(ctx context.Context, id uuid.UUID) (*model.Section, error) {
	section, err := scanSection(r.pool.QueryRow(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("section_id", id.String()).Msg("failed to query section")
		return nil, fmt.Errorf("failed to query section: %w", err)
	}
	return section, nil
}

// CreateSection inserts a section.
func (r *contentRepository) CreateSection(ctx context.Context, section *model.Section) error {
	query := `
		INSERT INTO sections (id, page_id, type, position, visible, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		section.ID, section.PageID, section.Type, section.Position, section.Visible,
		section.Settings, section.CreatedAt, section.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("page_id", section.PageID.String()).Msg("failed to create section")
		return fmt.Errorf("failed to create section: %w", err)
	}
	return nil
}

// UpdateSection replaces the editable fields of a section.
func (r *contentRepository) UpdateSection(ctx context.Context, section *model.Section) error {
	query := `
		UPDATE sections
		SET type = $2, position = $3, visible = $4, settings = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		section.ID, section.Type, section.Position, section.Visible, section.Settings, section.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("section_id", section.ID.String()).Msg("failed to update section")
		return fmt.Errorf("failed to update section: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSectionNotFound
	}
	return nil
}

// DeleteSection removes a section with its blocks.
func (r *contentRepository) DeleteSection(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "sections", id, model.ErrSectionNotFound)
}

// GetBlock retrieves a block by id together with its translations.
func (r *contentRepository) GetBlock(ctx context.Context, id uuid.UUID) (*model.Block, error) {
	block, err := scanBlock(r.pool.QueryRow(ctx, `SELECT `+blockColumns+` FROM blocks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("block_id", id.String()).Msg("failed to query block")
		return nil, fmt.Errorf("failed to query block: %w", err)
	}

	blocks := []model.Block{*block}
	if err := r.attachTranslations(ctx, blocks); err != nil {
		return nil, err
	}
	return &blocks[0], nil
}

// CreateBlock inserts a block.
func (r *contentRepository) CreateBlock(ctx context.Context, block *model.Block) error {
	query := `
		INSERT INTO blocks (id, section_id, type, position, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		block.ID, block.SectionID, block.Type, block.Position, block.Content, block.CreatedAt, block.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("section_id", block.SectionID.String()).Msg("failed to create block")
		return fmt.Errorf("failed to create block: %w", err)
	}
	return nil
}

// UpdateBlock replaces the editable fields of a block.
func (r *contentRepository) UpdateBlock(ctx context.Context, block *model.Block) error {
	query := `
		UPDATE blocks
		SET type = $2, position = $3, content = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, block.ID, block.Type, block.Position, block.Content, block.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("block_id", block.ID.String()).Msg("failed to update block")
		return fmt.Errorf("failed to update block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBlockNotFound
	}
	return nil
}

// DeleteBlock removes a block with its translations.
func (r *contentRepository) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "blocks", id, model.ErrBlockNotFound)
}

// UpsertTranslation inserts or replaces the translation of a block in one language.
func (r *contentRepository) UpsertTranslation(ctx context.Context, t *model.BlockTranslation) error {
	query := `
		INSERT INTO block_translations (block_id, lang, content, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (block_id, lang) DO UPDATE
		SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, t.BlockID, t.Lang, t.Content, t.UpdatedAt).Scan(&t.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("block_id", t.BlockID.String()).
			Str("lang", t.Lang).
			Msg("failed to upsert translation")
		return fmt.Errorf("failed to upsert translation: %w", err)
	}
	return nil
}

// DeleteTranslation removes the translation of a block in one language.
func (r *contentRepository) DeleteTranslation(ctx context.Context, blockID uuid.UUID, lang string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM block_translations WHERE block_id = $1 AND lang = $2`, blockID, lang)
	if err != nil {
		r.logger.Error().Err(err).Str("block_id", blockID.String()).Str("lang", lang).Msg("failed to delete translation")
		return fmt.Errorf("failed to delete translation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBlockNotFound
	}
	return nil
}

// table is always one of the package's own constants.
func (r *contentRepository) deleteByID(ctx context.Context, table string, id uuid.UUID, notFound error) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("table", table).Str("id", id.String()).Msg("failed to delete row")
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
