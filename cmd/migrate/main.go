package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"wellspring/internal/config"
	"wellspring/internal/database"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration instead of applying them")
	check := flag.Bool("check", false, "only verify that the database is reachable")
	flag.Parse()

	if err := run(*down, *check); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(down, check bool) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger).With().Str("component", "migrate").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		return fmt.Errorf("failed to query current database: %w", err)
	}
	logger.Info().Str("database", dbName).Msg("connected to database")

	if check {
		return nil
	}

	if down {
		if err := database.MigrateDown(cfg.Database.ConnectionString()); err != nil {
			return err
		}
		logger.Info().Msg("database migrations rolled back")
		return nil
	}

	return database.Migrate(cfg.Database.ConnectionString(), logger)
}
