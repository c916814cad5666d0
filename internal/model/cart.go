package model

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the mutable pre-checkout basket. A cart belongs to either a
// registered user or an anonymous guest token, never both; there is at
// most one cart per owner.
type Cart struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     *uuid.UUID `json:"userId,omitempty" db:"user_id"`
	GuestToken *string    `json:"guestToken,omitempty" db:"guest_token"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

// CartItem holds a product reference and quantity. At most one row per
// (cart, product); adding the same product again adjusts the quantity.
type CartItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	CartID    uuid.UUID `json:"-" db:"cart_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// CartOwner identifies a cart by its owner, either a registered user or
// a guest token.
type CartOwner struct {
	UserID     *uuid.UUID
	GuestToken *string
}
