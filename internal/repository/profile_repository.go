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

type profileRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProfileRepository {
	return &profileRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "profile").Logger(),
	}
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `SELECT id, email, full_name, role, created_at FROM profiles WHERE id = $1`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to query profile")
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return &p, nil
}

// EnsureExists never downgrades an existing role; only the email is refreshed.
func (r *profileRepository) EnsureExists(ctx context.Context, id uuid.UUID, email string) (*model.Profile, error) {
	query := `
		INSERT INTO profiles (id, email, role)
		VALUES ($1, $2, 'user')
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, full_name, role, created_at
	`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, id, email).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to ensure profile")
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}
	return &p, nil
}
