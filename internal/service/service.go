package service

import (
	"context"

	"github.com/gokturkdogan/olive-oil-sub000/internal/gateway"
	"github.com/gokturkdogan/olive-oil-sub000/internal/model"

	"github.com/google/uuid"
)

// CheckoutService turns a mutable cart into an immutable, priced order.
type CheckoutService interface {
	// Checkout runs the snapshot -> price -> coupon -> gateway ->
	// persist sequence. No order row is written unless the gateway
	// accepted the request.
	Checkout(ctx context.Context, owner model.CartOwner, req *model.CheckoutRequest) (*model.CheckoutResponse, error)
}

// CompletionResult is the recorded outcome of a payment callback.
type CompletionResult struct {
	OrderID uuid.UUID         `json:"orderId"`
	Status  model.OrderStatus `json:"status"`

	// AlreadyProcessed is true when the callback was a duplicate and no
	// side effect ran.
	AlreadyProcessed bool `json:"alreadyProcessed"`

	// ShortfallProducts lists products whose conditional stock decrement
	// affected zero rows. The order is still PAID (money was collected)
	// but flagged for manual review.
	ShortfallProducts []uuid.UUID `json:"shortfallProducts,omitempty"`
}

// PaymentService processes gateway callbacks idempotently.
type PaymentService interface {
	// Complete applies a gateway result to a PENDING order exactly once.
	// Safe to invoke repeatedly: duplicates return the recorded outcome
	// without repeating any side effect.
	Complete(ctx context.Context, orderID uuid.UUID, result gateway.CallbackResult) (*CompletionResult, error)
}

// OrderService exposes order reads, admin transitions, cancellation and
// refund bookkeeping.
type OrderService interface {
	// GetByID retrieves an order with its items, or nil if none exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// UpdateStatus drives the admin fulfilment chain
	// (PAID -> PROCESSING -> SHIPPED -> DELIVERED, one step backward
	// allowed). The transition to DELIVERED triggers the loyalty
	// recompute exactly once.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus model.OrderStatus) error

	// UpdateShipping records provider and tracking code, implicitly
	// transitioning the order to SHIPPED.
	UpdateShipping(ctx context.Context, orderID uuid.UUID, provider, trackingCode string) error

	// Cancel transitions a pre-shipment order to CANCELLED, restores
	// stock if it was already decremented, and drives refund
	// bookkeeping.
	Cancel(ctx context.Context, orderID uuid.UUID, reason string) error

	// MarkRefundCompleted is the operator acknowledgement for manual
	// refunds: MANUAL_REQUIRED -> MANUAL_COMPLETED.
	MarkRefundCompleted(ctx context.Context, orderID uuid.UUID) error
}

// CartService manages the pre-checkout basket. Not on the payment hot
// path.
type CartService interface {
	// Get retrieves the owner's cart and items, creating an empty cart
	// if none exists.
	Get(ctx context.Context, owner model.CartOwner) (*model.Cart, []model.CartItem, error)

	// AddItem sets the quantity for a product in the owner's cart.
	AddItem(ctx context.Context, owner model.CartOwner, productID uuid.UUID, quantity int) error

	// RemoveItem removes a product from the owner's cart.
	RemoveItem(ctx context.Context, owner model.CartOwner, productID uuid.UUID) error

	// MergeGuestCart folds a guest cart into a user's cart on login.
	MergeGuestCart(ctx context.Context, guestToken string, userID uuid.UUID) error
}
