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

// userRepository implements the UserRepository interface using
// PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

// GetByID retrieves a user, or nil if none exists.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, email, total_spent, loyalty_tier, created_at
		FROM users
		WHERE id = $1
	`

	var u model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.TotalSpent, &u.Tier, &u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("user_id", id.String()).Msg("user not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

// AddSpend adds amount to the user's cumulative spend and returns the
// new total. The UPDATE takes the row lock, so a concurrent delivery for
// the same user serialises here and both see consistent totals.
func (r *userRepository) AddSpend(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) (int64, error) {
	query := `
		UPDATE users
		SET total_spent = total_spent + $2
		WHERE id = $1
		RETURNING total_spent
	`

	var total int64
	if err := tx.QueryRow(ctx, query, userID, amount).Scan(&total); err != nil {
		if err == pgx.ErrNoRows {
			return 0, fmt.Errorf("user %s not found", userID)
		}
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Int64("amount", amount).
			Msg("failed to add user spend")
		return 0, fmt.Errorf("failed to add user spend: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID.String()).
		Int64("amount", amount).
		Int64("total_spent", total).
		Msg("user spend updated")

	return total, nil
}

// SetTier records the user's loyalty tier. Tier is a pure function of
// total_spent, so callers recompute it from the total AddSpend returned.
func (r *userRepository) SetTier(ctx context.Context, tx pgx.Tx, userID uuid.UUID, tier model.LoyaltyTier) error {
	query := `UPDATE users SET loyalty_tier = $2 WHERE id = $1`

	if _, err := tx.Exec(ctx, query, userID, tier); err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("tier", string(tier)).
			Msg("failed to set loyalty tier")
		return fmt.Errorf("failed to set loyalty tier: %w", err)
	}

	return nil
}
