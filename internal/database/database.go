package database

import (
	"context"
	"fmt"
	"time"

	"wellspring/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewPool creates a new PostgreSQL connection pool.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	return newPool(ctx, cfg.ConnectionString(), cfg.MaxConnections, cfg.MinConnections,
		time.Duration(cfg.MaxConnLifetime)*time.Second, logger.With().
			Str("host", cfg.Host).
			Int("port", cfg.Port).
			Str("database", cfg.Database).
			Logger())
}

// NewPoolFromURL creates a pool from a connection string with default sizing.
func NewPoolFromURL(ctx context.Context, url string, logger zerolog.Logger) (*pgxpool.Pool, error) {
	return newPool(ctx, url, 10, 1, 5*time.Minute, logger)
}

func newPool(ctx context.Context, url string, maxConns, minConns int, lifetime time.Duration, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(maxConns)
	poolConfig.MinConns = int32(minConns)
	poolConfig.MaxConnLifetime = lifetime
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	logger.Info().
		Int("max_connections", maxConns).
		Int("min_connections", minConns).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("database connection pool created successfully")

	return pool, nil
}
