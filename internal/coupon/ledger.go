// Package coupon validates discount codes against cart subtotals and
// usage budgets. Validation is read-only: usage is committed later,
// exactly once per order, by the payment completion handler through
// CouponRepository.RecordUsage.
package coupon

import (
	"context"
	"time"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"
	"github.com/gokturkdogan/olive-oil-sub000/internal/repository"

	"github.com/rs/zerolog"
)

// Ledger validates coupon codes.
type Ledger interface {
	// Validate checks a code against the cart subtotal. On success it
	// returns the discount amount and the coupon. It reserves nothing.
	Validate(ctx context.Context, code string, subtotal int64) (int64, *model.Coupon, error)
}

// ledger implements Ledger against the coupon repository.
type ledger struct {
	repo   repository.CouponRepository
	logger zerolog.Logger
}

// NewLedger creates a new coupon ledger.
func NewLedger(repo repository.CouponRepository, logger zerolog.Logger) Ledger {
	return &ledger{
		repo:   repo,
		logger: logger.With().Str("component", "coupon-ledger").Logger(),
	}
}

// Validate checks the code's existence, expiry, usage budget and minimum
// subtotal, in that order.
func (l *ledger) Validate(ctx context.Context, code string, subtotal int64) (int64, *model.Coupon, error) {
	c, err := l.repo.GetByCode(ctx, code)
	if err != nil {
		return 0, nil, err
	}
	if c == nil {
		l.logger.Debug().Str("code", code).Msg("coupon not found")
		return 0, nil, model.ErrCouponNotFound
	}

	if c.ExpiresAt != nil && time.Now().After(*c.ExpiresAt) {
		l.logger.Debug().Str("code", code).Time("expires_at", *c.ExpiresAt).Msg("coupon expired")
		return 0, nil, model.ErrCouponExpired
	}

	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		l.logger.Debug().
			Str("code", code).
			Int("used", c.UsedCount).
			Int("limit", c.UsageLimit).
			Msg("coupon usage limit exceeded")
		return 0, nil, model.ErrCouponLimit
	}

	if subtotal < c.MinSubtotal {
		l.logger.Debug().
			Str("code", code).
			Int64("subtotal", subtotal).
			Int64("minimum", c.MinSubtotal).
			Msg("subtotal below coupon minimum")
		return 0, nil, model.ErrCouponMinimum
	}

	discount := c.DiscountFor(subtotal)

	l.logger.Debug().
		Str("code", code).
		Int64("discount", discount).
		Msg("coupon validated")

	return discount, c, nil
}
