package repository

import (
	"context"
	"fmt"

	"wellspring/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type webhookEventRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWebhookEventRepository creates a new PostgreSQL-backed webhook event repository.
func NewWebhookEventRepository(pool *pgxpool.Pool, logger zerolog.Logger) WebhookEventRepository {
	return &webhookEventRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "webhook_event").Logger(),
	}
}

func (r *webhookEventRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM webhook_events WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("event_id", id).Msg("failed to check webhook event")
		return false, fmt.Errorf("failed to check webhook event: %w", err)
	}
	return exists, nil
}

func (r *webhookEventRepository) Record(ctx context.Context, tx pgx.Tx, event model.WebhookEvent) (bool, error) {
	query := `
		INSERT INTO webhook_events (id, type, processed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, event.ID, event.Type, event.ProcessedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to record webhook event")
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
