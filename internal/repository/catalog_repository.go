package repository

import (
	"context"
	"errors"
	"fmt"

	"wellspring/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// catalogRepository implements the CatalogRepository interface using PostgreSQL.
type catalogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger zerolog.Logger) CatalogRepository {
	return &catalogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "catalog").Logger(),
	}
}

const productColumns = `id, slug, name, description, price, image_url, active, created_at`

const serviceColumns = `id, slug, name, description, price, duration_minutes, image_url, active, created_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Active, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanService(row pgx.Row) (*model.Service, error) {
	var s model.Service
	err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.Description, &s.Price, &s.DurationMinutes, &s.ImageURL, &s.Active, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListProducts retrieves active products with pagination support.
func (r *catalogRepository) ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE active
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *catalogRepository) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1 AND active`
	return r.getProduct(ctx, query, slug)
}

// GetProductByID returns inactive products too; callers decide what to do with them.
func (r *catalogRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.getProduct(ctx, query, id)
}

func (r *catalogRepository) getProduct(ctx context.Context, query string, arg any) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Any("key", arg).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Any("key", arg).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// ListServices retrieves active services with pagination support.
func (r *catalogRepository) ListServices(ctx context.Context, limit, offset int) ([]model.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE active
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query services")
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	services := []model.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan service row")
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, *s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating service rows")
		return nil, fmt.Errorf("error iterating services: %w", err)
	}

	return services, nil
}

func (r *catalogRepository) GetServiceBySlug(ctx context.Context, slug string) (*model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE slug = $1 AND active`
	return r.getService(ctx, query, slug)
}

func (r *catalogRepository) GetServiceByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`
	return r.getService(ctx, query, id)
}

func (r *catalogRepository) getService(ctx context.Context, query string, arg any) (*model.Service, error) {
	s, err := scanService(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Any("key", arg).Msg("service not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Any("key", arg).Msg("failed to query service")
		return nil, fmt.Errorf("failed to query service: %w", err)
	}
	return s, nil
}
