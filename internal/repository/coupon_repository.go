package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// couponRepository implements the CouponRepository interface using
// PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// GetByCode retrieves a coupon by its code, or nil if none exists.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `
		SELECT id, code, discount_type, value, min_subtotal, usage_limit, used_count, expires_at, created_at
		FROM coupons
		WHERE code = $1
	`

	var c model.Coupon
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.Type, &c.Value, &c.MinSubtotal,
		&c.UsageLimit, &c.UsedCount, &c.ExpiresAt, &c.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return &c, nil
}

// RecordUsage commits one usage of the coupon for the given order. The
// coupon_usages table has a UNIQUE constraint on order_id, so a retried
// callback that tries to record the same order again violates the
// constraint and the counter stays put.
func (r *couponRepository) RecordUsage(ctx context.Context, tx pgx.Tx, couponID, orderID uuid.UUID) (bool, error) {
	insert := `
		INSERT INTO coupon_usages (id, coupon_id, order_id, used_at)
		VALUES ($1, $2, $3, NOW())
	`

	if _, err := tx.Exec(ctx, insert, uuid.New(), couponID, orderID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Debug().
				Str("coupon_id", couponID.String()).
				Str("order_id", orderID.String()).
				Msg("coupon usage already recorded for order")
			return false, nil
		}
		r.logger.Error().
			Err(err).
			Str("coupon_id", couponID.String()).
			Str("order_id", orderID.String()).
			Msg("failed to record coupon usage")
		return false, fmt.Errorf("failed to record coupon usage: %w", err)
	}

	increment := `UPDATE coupons SET used_count = used_count + 1 WHERE id = $1`

	if _, err := tx.Exec(ctx, increment, couponID); err != nil {
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to increment coupon usage")
		return false, fmt.Errorf("failed to increment coupon usage: %w", err)
	}

	return true, nil
}
