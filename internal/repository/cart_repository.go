package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using
// PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// GetByOwner retrieves the owner's cart, or nil if none exists.
func (r *cartRepository) GetByOwner(ctx context.Context, owner model.CartOwner) (*model.Cart, error) {
	var (
		query string
		arg   any
	)
	switch {
	case owner.UserID != nil:
		query = `SELECT id, user_id, guest_token, created_at, updated_at FROM carts WHERE user_id = $1`
		arg = *owner.UserID
	case owner.GuestToken != nil:
		query = `SELECT id, user_id, guest_token, created_at, updated_at FROM carts WHERE guest_token = $1`
		arg = *owner.GuestToken
	default:
		return nil, fmt.Errorf("cart owner has neither user id nor guest token")
	}

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&cart.ID, &cart.UserID, &cart.GuestToken, &cart.CreatedAt, &cart.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	return &cart, nil
}

// GetOrCreate retrieves the owner's cart, creating an empty one if
// necessary. The UNIQUE constraints on carts(user_id) and
// carts(guest_token) keep this to at most one cart per owner even when
// two requests race.
func (r *cartRepository) GetOrCreate(ctx context.Context, owner model.CartOwner) (*model.Cart, error) {
	cart, err := r.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	now := time.Now()
	newCart := &model.Cart{
		ID:         uuid.New(),
		UserID:     owner.UserID,
		GuestToken: owner.GuestToken,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	query := `
		INSERT INTO carts (id, user_id, guest_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query,
		newCart.ID, newCart.UserID, newCart.GuestToken, newCart.CreatedAt, newCart.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create cart")
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Lost the race; the other request's cart wins.
		return r.GetByOwner(ctx, owner)
	}

	r.logger.Debug().Str("cart_id", newCart.ID.String()).Msg("cart created")

	return newCart, nil
}

// GetItems retrieves all items in a cart.
func (r *cartRepository) GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// UpsertItem sets the quantity for a (cart, product) pair. The UNIQUE
// constraint on (cart_id, product_id) keeps one row per product.
func (r *cartRepository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`

	if _, err := r.pool.Exec(ctx, query, uuid.New(), cartID, productID, quantity); err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID.String()).
			Msg("failed to upsert cart item")
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

// RemoveItem deletes a (cart, product) row.
func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`

	if _, err := r.pool.Exec(ctx, query, cartID, productID); err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID.String()).
			Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return nil
}

// Clear removes all items from a cart within the transaction.
func (r *cartRepository) Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1`

	if _, err := tx.Exec(ctx, query, cartID); err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	r.logger.Debug().Str("cart_id", cartID.String()).Msg("cart cleared")

	return nil
}

// MergeGuestCart folds a guest cart into the user's cart on login.
// Quantities for products present in both carts are summed. This is a
// rare path and runs with a coarse transaction, not the checkout
// row-lock discipline.
func (r *cartRepository) MergeGuestCart(ctx context.Context, guestToken string, userID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	guestCart, err := r.GetByOwner(ctx, model.CartOwner{GuestToken: &guestToken})
	if err != nil {
		return err
	}
	if guestCart == nil {
		return nil
	}

	userCart, err := r.GetOrCreate(ctx, model.CartOwner{UserID: &userID})
	if err != nil {
		return err
	}

	mergeQuery := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		SELECT gen_random_uuid(), $1, product_id, quantity
		FROM cart_items
		WHERE cart_id = $2
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`

	if _, err := tx.Exec(ctx, mergeQuery, userCart.ID, guestCart.ID); err != nil {
		r.logger.Error().Err(err).Msg("failed to merge guest cart items")
		return fmt.Errorf("failed to merge guest cart items: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, guestCart.ID); err != nil {
		return fmt.Errorf("failed to drop guest cart items: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, guestCart.ID); err != nil {
		return fmt.Errorf("failed to drop guest cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit guest cart merge: %w", err)
	}

	r.logger.Info().
		Str("guest_cart_id", guestCart.ID.String()).
		Str("user_cart_id", userCart.ID.String()).
		Msg("guest cart merged")

	return nil
}
