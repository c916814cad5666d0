package repository

import (
	"context"
	"fmt"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using
// PostgreSQL.
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

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

const orderColumns = `
	id, user_id, guest_token,
	shipping_name, shipping_address, shipping_phone,
	subtotal, discount_total, shipping_fee, total,
	status, payment_reference, coupon_code, refund_status,
	shipping_provider, tracking_code, review_required,
	created_at, updated_at
`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.GuestToken,
		&o.Shipping.Name, &o.Shipping.Address, &o.Shipping.Phone,
		&o.Subtotal, &o.DiscountTotal, &o.ShippingFee, &o.Total,
		&o.Status, &o.PaymentReference, &o.CouponCode, &o.RefundStatus,
		&o.ShippingProvider, &o.TrackingCode, &o.ReviewRequired,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts a new order and its items within the transaction.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order, items []model.OrderItem) error {
	query := `
		INSERT INTO orders (
			id, user_id, guest_token,
			shipping_name, shipping_address, shipping_phone,
			subtotal, discount_total, shipping_fee, total,
			status, payment_reference, coupon_code, review_required,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.UserID, order.GuestToken,
		order.Shipping.Name, order.Shipping.Address, order.Shipping.Phone,
		order.Subtotal, order.DiscountTotal, order.ShippingFee, order.Total,
		order.Status, order.PaymentReference, order.CouponCode, order.ReviewRequired,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, title_snapshot, unit_price_snapshot, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(itemQuery, item.ID, item.OrderID, item.ProductID,
			item.TitleSnapshot, item.UnitPriceSnapshot, item.Quantity, item.LineTotal)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Int("item_count", len(items)).
		Msg("order created")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.queryItems(ctx, r.pool, id)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// GetForUpdate retrieves an order under a row lock within the
// transaction.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	return order, nil
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// GetItems retrieves the order's items within the transaction.
func (r *orderRepository) GetItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error) {
	return r.queryItems(ctx, tx, orderID)
}

func (r *orderRepository) queryItems(ctx context.Context, q rowQuerier, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, title_snapshot, unit_price_snapshot, quantity, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.TitleSnapshot, &item.UnitPriceSnapshot, &item.Quantity, &item.LineTotal)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// UpdateStatus transitions the order between statuses as a
// compare-and-set. The WHERE clause on the current status makes two
// racing transitions mutually exclusive: only one sees an affected row.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, from, to model.OrderStatus) (bool, error) {
	query := `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := tx.Exec(ctx, query, orderID, from, to)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// SetReviewRequired flags the order for manual operator review.
func (r *orderRepository) SetReviewRequired(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	query := `UPDATE orders SET review_required = TRUE, updated_at = NOW() WHERE id = $1`

	if _, err := tx.Exec(ctx, query, orderID); err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to flag order for review")
		return fmt.Errorf("failed to flag order for review: %w", err)
	}

	return nil
}

// SetRefundStatus records refund bookkeeping within the transaction.
func (r *orderRepository) SetRefundStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.RefundStatus) error {
	query := `UPDATE orders SET refund_status = $2, updated_at = NOW() WHERE id = $1`

	if _, err := tx.Exec(ctx, query, orderID, status); err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("refund_status", string(status)).
			Msg("failed to set refund status")
		return fmt.Errorf("failed to set refund status: %w", err)
	}

	return nil
}

// UpdateRefundStatus transitions refund_status as a compare-and-set.
func (r *orderRepository) UpdateRefundStatus(ctx context.Context, orderID uuid.UUID, from, to model.RefundStatus) (bool, error) {
	query := `
		UPDATE orders
		SET refund_status = $3, updated_at = NOW()
		WHERE id = $1 AND refund_status = $2
	`

	tag, err := r.pool.Exec(ctx, query, orderID, from, to)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("failed to update refund status")
		return false, fmt.Errorf("failed to update refund status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// SetShipping records the shipping provider and tracking code.
func (r *orderRepository) SetShipping(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, provider, trackingCode string) error {
	query := `
		UPDATE orders
		SET shipping_provider = $2, tracking_code = $3, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, orderID, provider, trackingCode); err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to set shipping details")
		return fmt.Errorf("failed to set shipping details: %w", err)
	}

	return nil
}
