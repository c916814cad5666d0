package repository

import (
	"context"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access
// operations used by the order engine.
type ProductRepository interface {
	// GetByIDs retrieves multiple products keyed by id.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error)

	// DecrementStock performs an atomic conditional decrement
	// (stock = stock - qty WHERE stock >= qty) within the transaction.
	// Returns false when the condition did not hold, leaving stock
	// untouched.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int) (bool, error)

	// RestoreStock adds qty back to a product's stock within the
	// transaction.
	RestoreStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int) error
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// GetByOwner retrieves the owner's cart, or nil if none exists.
	GetByOwner(ctx context.Context, owner model.CartOwner) (*model.Cart, error)

	// GetOrCreate retrieves the owner's cart, creating an empty one if
	// necessary.
	GetOrCreate(ctx context.Context, owner model.CartOwner) (*model.Cart, error)

	// GetItems retrieves all items in a cart.
	GetItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error)

	// UpsertItem sets the quantity for a (cart, product) pair, inserting
	// the row if it does not exist.
	UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error

	// RemoveItem deletes a (cart, product) row.
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error

	// Clear removes all items from a cart within the transaction.
	Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error

	// MergeGuestCart folds a guest cart into the user's cart on login.
	// Rare path, runs in its own transaction.
	MergeGuestCart(ctx context.Context, guestToken string, userID uuid.UUID) error
}

// CouponRepository defines the interface for coupon data access
// operations.
type CouponRepository interface {
	// GetByCode retrieves a coupon by its code, or nil if none exists.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// RecordUsage commits one usage of the coupon for the given order
	// within the transaction. The ledger is keyed by order id, so a
	// retried callback records nothing and returns false.
	RecordUsage(ctx context.Context, tx pgx.Tx, couponID, orderID uuid.UUID) (bool, error)
}

// OrderRepository defines the interface for order data access
// operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new order and its items within the transaction.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetForUpdate retrieves an order under a row lock within the
	// transaction, or nil if none exists.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// GetItems retrieves the order's items within the transaction.
	GetItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error)

	// UpdateStatus transitions the order from one status to another as a
	// compare-and-set. Returns false when the order was no longer in the
	// expected status.
	UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, from, to model.OrderStatus) (bool, error)

	// SetReviewRequired flags the order for manual operator review
	// within the transaction.
	SetReviewRequired(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error

	// SetRefundStatus records refund bookkeeping within the transaction.
	SetRefundStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.RefundStatus) error

	// UpdateRefundStatus transitions refund_status as a compare-and-set.
	// Returns false when the order was no longer in the expected refund
	// status.
	UpdateRefundStatus(ctx context.Context, orderID uuid.UUID, from, to model.RefundStatus) (bool, error)

	// SetShipping records the shipping provider and tracking code within
	// the transaction.
	SetShipping(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, provider, trackingCode string) error
}

// UserRepository defines the interface for the loyalty fields the order
// engine owns.
type UserRepository interface {
	// GetByID retrieves a user, or nil if none exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// AddSpend adds amount to the user's cumulative spend within the
	// transaction and returns the new total. total_spent only ever grows
	// through this method.
	AddSpend(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64) (int64, error)

	// SetTier records the user's loyalty tier within the transaction.
	SetTier(ctx context.Context, tx pgx.Tx, userID uuid.UUID, tier model.LoyaltyTier) error
}
