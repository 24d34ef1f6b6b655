package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"wellspring/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, applies the embedded
// migrations and opens a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	if err := database.Migrate(connStr, logger); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	pool, err := database.NewPoolFromURL(ctx, connStr, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Seeded catalog ids.
var (
	OilProductID     = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	CandleProductID  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	RetiredProductID = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	MassageServiceID = uuid.MustParse("44444444-4444-4444-4444-444444444444")
)

// SeedCatalog inserts test products and services into the database.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		id     uuid.UUID
		slug   string
		name   string
		price  string
		active bool
	}{
		{OilProductID, "lavender-oil", "Lavender Oil", "12.50", true},
		{CandleProductID, "soy-candle", "Soy Candle", "8.00", true},
		{RetiredProductID, "old-balm", "Old Balm", "5.00", false},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			"INSERT INTO products (id, slug, name, price, active) VALUES ($1, $2, $3, $4, $5)",
			p.id, p.slug, p.name, decimal.RequireFromString(p.price), p.active,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.slug, err)
		}
	}

	_, err := pool.Exec(ctx,
		"INSERT INTO services (id, slug, name, price, duration_minutes) VALUES ($1, $2, $3, $4, $5)",
		MassageServiceID, "thai-massage", "Thai Massage", decimal.RequireFromString("60.00"), 90,
	)
	if err != nil {
		t.Fatalf("failed to seed service: %v", err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{
		"webhook_events", "order_items", "orders", "block_translations", "blocks",
		"sections", "pages", "products", "services", "profiles",
	}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
