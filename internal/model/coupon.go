package model

import (
	"time"

	"github.com/google/uuid"
)

// DiscountType distinguishes percentage coupons from fixed-amount ones.
type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFixed   DiscountType = "FIXED"
)

// Coupon is a discount code with a usage budget. The usage counter moves
// at most once per order, and only on confirmed payment.
type Coupon struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	Code        string       `json:"code" db:"code"`
	Type        DiscountType `json:"type" db:"discount_type"`
	Value       int64        `json:"value" db:"value"` // percent (0-100) or minor units
	MinSubtotal int64        `json:"minSubtotal" db:"min_subtotal"`
	UsageLimit  int          `json:"usageLimit" db:"usage_limit"`
	UsedCount   int          `json:"usedCount" db:"used_count"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
}

// DiscountFor computes the discount this coupon grants on the given
// subtotal. Integer arithmetic only; percentage discounts truncate.
func (c *Coupon) DiscountFor(subtotal int64) int64 {
	var discount int64
	switch c.Type {
	case DiscountPercent:
		discount = subtotal * c.Value / 100
	case DiscountFixed:
		discount = c.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount
}
