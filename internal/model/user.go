package model

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyTier is a benefit level derived purely from cumulative spend.
// It never decreases.
type LoyaltyTier string

const (
	TierStandard LoyaltyTier = "STANDARD"
	TierSilver   LoyaltyTier = "SILVER"
	TierGold     LoyaltyTier = "GOLD"
	TierPlatinum LoyaltyTier = "PLATINUM"
)

// tierRanks orders tiers for monotonicity comparisons.
var tierRanks = map[LoyaltyTier]int{
	TierStandard: 0,
	TierSilver:   1,
	TierGold:     2,
	TierPlatinum: 3,
}

// Rank returns the ordinal position of the tier. Unknown tiers rank
// lowest.
func (t LoyaltyTier) Rank() int {
	return tierRanks[t]
}

// User carries only the loyalty fields the order engine owns. Account
// management is an external concern.
type User struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	Email      string      `json:"email" db:"email"`
	TotalSpent int64       `json:"totalSpent" db:"total_spent"`
	Tier       LoyaltyTier `json:"loyaltyTier" db:"loyalty_tier"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
}
