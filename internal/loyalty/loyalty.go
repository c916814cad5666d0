// Package loyalty derives customer benefit tiers from cumulative spend.
//
// Tier is a pure function of total spend over fixed ascending thresholds,
// so as long as total spend never decreases the tier is automatically
// monotonic. The order engine only ever adds to total spend (on
// delivery), never subtracts; cancellation is restricted to pre-shipment
// states precisely so that delivered spend is never clawed back.
package loyalty

import "github.com/gokturkdogan/olive-oil-sub000/internal/model"

// Spend thresholds in minor currency units, ascending.
const (
	silverThreshold   = 100_000
	goldThreshold     = 500_000
	platinumThreshold = 1_000_000
)

// Per-tier discount in whole percent, used by the pricing calculator.
var tierDiscounts = map[model.LoyaltyTier]int64{
	model.TierStandard: 0,
	model.TierSilver:   3,
	model.TierGold:     5,
	model.TierPlatinum: 10,
}

// TierFor maps cumulative spend to a loyalty tier.
func TierFor(totalSpent int64) model.LoyaltyTier {
	switch {
	case totalSpent >= platinumThreshold:
		return model.TierPlatinum
	case totalSpent >= goldThreshold:
		return model.TierGold
	case totalSpent >= silverThreshold:
		return model.TierSilver
	default:
		return model.TierStandard
	}
}

// DiscountPercent returns the tier's discount in whole percent.
func DiscountPercent(tier model.LoyaltyTier) int64 {
	return tierDiscounts[tier]
}

// FreeShipping reports whether the tier waives the shipping fee
// regardless of subtotal.
func FreeShipping(tier model.LoyaltyTier) bool {
	return tier == model.TierGold || tier == model.TierPlatinum
}
