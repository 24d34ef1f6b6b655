package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wellspring/internal/model"
	"wellspring/internal/payment"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id, user_id, customer_email, status, stripe_session_id,
	COALESCE(stripe_payment_intent_id, ''), total, currency, metadata, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.CustomerEmail,
		&o.Status,
		&o.StripeSessionID,
		&o.StripePaymentIntentID,
		&o.Total,
		&o.Currency,
		&o.Metadata,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order.
func (r *orderRepository) CreateOrder(ctx context.Context, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, customer_email, status, stripe_session_id, total, currency, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.CustomerEmail,
		order.Status,
		order.StripeSessionID,
		order.Total,
		order.Currency,
		order.Metadata,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("session_id", order.StripeSessionID).
		Msg("order created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	order, err := r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil || order == nil {
		return nil, nil, err
	}

	itemsQuery := `
		SELECT id, order_id, line_no, item_type, item_id, name, quantity, price,
			booking_date, booking_time, duration_minutes
		FROM order_items
		WHERE order_id = $1
		ORDER BY line_no
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Msg("failed to query order items")
		return nil, nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.LineNo, &item.ItemType, &item.ItemID, &item.Name,
			&item.Quantity, &item.Price, &item.BookingDate, &item.BookingTime, &item.DurationMinutes,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, items, nil
}

// FindBySessionID retrieves the order created for a checkout session.
func (r *orderRepository) FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE stripe_session_id = $1`, sessionID)
}

// FindByPaymentIntentID retrieves the order paid by a payment intent.
func (r *orderRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE stripe_payment_intent_id = $1`, paymentIntentID)
}

func (r *orderRepository) findOne(ctx context.Context, query string, arg any) (*model.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Any("key", arg).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Any("key", arg).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	return order, nil
}

// List retrieves orders, newest first.
func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// ApplyTransition moves an order from t.From to t.To within tx and inserts t.Items.
func (r *orderRepository) ApplyTransition(ctx context.Context, tx pgx.Tx, t payment.Transition) (bool, error) {
	update := `
		UPDATE orders
		SET status = $1,
			stripe_payment_intent_id = NULLIF($2, ''),
			updated_at = $3
		WHERE id = $4 AND status = $5
	`

	tag, err := tx.Exec(ctx, update, t.To, t.PaymentIntentID, time.Now(), t.OrderID, t.From)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", t.OrderID.String()).
			Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("order_id", t.OrderID.String()).
			Str("expected_status", string(t.From)).
			Msg("order status changed concurrently")
		return false, nil
	}

	if len(t.Items) == 0 {
		return true, nil
	}

	insert := `
		INSERT INTO order_items (order_id, line_no, item_type, item_id, name, quantity, price,
			booking_date, booking_time, duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (order_id, line_no) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, item := range t.Items {
		batch.Queue(insert,
			item.OrderID, item.LineNo, item.ItemType, item.ItemID, item.Name, item.Quantity,
			item.Price, item.BookingDate, item.BookingTime, item.DurationMinutes,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(t.Items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", t.OrderID.String()).
				Int("line_no", t.Items[i].LineNo).
				Msg("failed to create order item")
			return false, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Str("order_id", t.OrderID.String()).
		Int("count", len(t.Items)).
		Msg("order items created successfully")

	return true, nil
}
