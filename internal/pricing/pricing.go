// Package pricing turns a priced basket, an optional coupon and a
// loyalty tier into the final order amounts. All arithmetic is on int64
// minor currency units; no floating point anywhere.
package pricing

import (
	"github.com/gokturkdogan/olive-oil-sub000/internal/loyalty"
	"github.com/gokturkdogan/olive-oil-sub000/internal/model"
)

// DiscountPolicy names the rule for combining a coupon discount with a
// loyalty-tier discount.
type DiscountPolicy string

// PolicyBestOf applies the larger of the coupon discount and the
// loyalty-tier discount. The two never stack.
const PolicyBestOf DiscountPolicy = "best_of"

// Config holds the shipping and discount policy knobs.
type Config struct {
	// FreeShippingThreshold is the subtotal at or above which shipping
	// is free, in minor units.
	FreeShippingThreshold int64

	// BaseShippingFee is charged below the threshold, in minor units.
	BaseShippingFee int64

	// Policy selects the coupon/loyalty discount combination rule.
	Policy DiscountPolicy
}

// Quote is the priced outcome of a checkout attempt.
type Quote struct {
	Subtotal      int64
	DiscountTotal int64
	ShippingFee   int64
	Total         int64
}

// Calculate prices a snapshot. couponDiscount is the already-validated
// coupon's discount on the subtotal (0 when no coupon was supplied).
// The invariant Total == Subtotal - DiscountTotal + ShippingFee holds,
// and Total is never negative.
func Calculate(items []model.OrderItemDraft, couponDiscount int64, tier model.LoyaltyTier, cfg Config) Quote {
	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotal
	}

	tierDiscount := subtotal * loyalty.DiscountPercent(tier) / 100

	discount := couponDiscount
	if cfg.Policy == PolicyBestOf && tierDiscount > discount {
		discount = tierDiscount
	}
	if discount > subtotal {
		discount = subtotal
	}

	var shipping int64
	if !loyalty.FreeShipping(tier) && subtotal < cfg.FreeShippingThreshold {
		shipping = cfg.BaseShippingFee
	}

	return Quote{
		Subtotal:      subtotal,
		DiscountTotal: discount,
		ShippingFee:   shipping,
		Total:         subtotal - discount + shipping,
	}
}
