package service

import (
	"context"
	"fmt"

	"github.com/gokturkdogan/olive-oil-sub000/internal/gateway"
	"github.com/gokturkdogan/olive-oil-sub000/internal/model"
	"github.com/gokturkdogan/olive-oil-sub000/internal/notify"
	"github.com/gokturkdogan/olive-oil-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// paymentService implements PaymentService. Gateways retry callbacks, so
// everything here runs under a row lock on the order and is a no-op
// whenever the order has already left PENDING.
type paymentService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	cartRepo    repository.CartRepository
	notifier    notify.Notifier
	logger      zerolog.Logger
}

// NewPaymentService creates a new payment completion handler.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	cartRepo repository.CartRepository,
	notifier notify.Notifier,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		cartRepo:    cartRepo,
		notifier:    notifier,
		logger:      logger.With().Str("service", "payment").Logger(),
	}
}

// Complete applies a gateway result to an order. All side effects
// (status, stock, coupon usage, cart clearing) commit in one
// transaction; notification runs after commit and is best-effort.
func (s *paymentService) Complete(ctx context.Context, orderID uuid.UUID, result gateway.CallbackResult) (*CompletionResult, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to process payment callback: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	// Idempotency guard: a duplicate delivery finds the order already
	// settled and must not repeat any side effect.
	if order.Status != model.StatusPending {
		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("status", string(order.Status)).
			Msg("duplicate payment callback, returning recorded outcome")
		return &CompletionResult{
			OrderID:          orderID,
			Status:           order.Status,
			AlreadyProcessed: true,
		}, nil
	}

	if !result.Succeeded() {
		return s.completeFailed(ctx, tx, order, &committed)
	}

	return s.completePaid(ctx, tx, order, &committed)
}

// completeFailed settles a failed payment: PENDING -> FAILED, nothing
// else moves.
func (s *paymentService) completeFailed(ctx context.Context, tx pgx.Tx, order *model.Order, committed *bool) (*CompletionResult, error) {
	ok, err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.StatusPending, model.StatusFailed)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payment failure: %w", err)
	}
	*committed = true

	s.logger.Info().Str("order_id", order.ID.String()).Msg("payment failed, order settled as FAILED")

	s.notifier.NotifyStatusChange(ctx, order, model.StatusFailed)

	return &CompletionResult{OrderID: order.ID, Status: model.StatusFailed}, nil
}

// completePaid settles a successful payment: PENDING -> PAID, stock
// decremented conditionally per item, coupon usage recorded once, cart
// cleared.
func (s *paymentService) completePaid(ctx context.Context, tx pgx.Tx, order *model.Order, committed *bool) (*CompletionResult, error) {
	ok, err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.StatusPending, model.StatusPaid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrConflict
	}

	items, err := s.orderRepo.GetItems(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	// Conditional decrements: money is already collected, so a failed
	// condition must not fail the order. It must not oversell either, so
	// the shortfall is recorded and the order flagged for manual review.
	var shortfall []uuid.UUID
	for _, item := range items {
		decremented, err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !decremented {
			shortfall = append(shortfall, item.ProductID)
		}
	}

	if len(shortfall) > 0 {
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Int("shortfall_count", len(shortfall)).
			Msg("stock shortfall at completion, flagging order for review")
		if err := s.orderRepo.SetReviewRequired(ctx, tx, order.ID); err != nil {
			return nil, err
		}
	}

	if order.CouponCode != nil && *order.CouponCode != "" {
		c, err := s.couponRepo.GetByCode(ctx, *order.CouponCode)
		if err != nil {
			return nil, err
		}
		if c != nil {
			recorded, err := s.couponRepo.RecordUsage(ctx, tx, c.ID, order.ID)
			if err != nil {
				return nil, err
			}
			if !recorded {
				s.logger.Debug().
					Str("order_id", order.ID.String()).
					Str("coupon_code", c.Code).
					Msg("coupon usage was already recorded for this order")
			}
		}
	}

	cart, err := s.cartRepo.GetByOwner(ctx, model.CartOwner{UserID: order.UserID, GuestToken: order.GuestToken})
	if err != nil {
		return nil, err
	}
	if cart != nil {
		if err := s.cartRepo.Clear(ctx, tx, cart.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payment completion: %w", err)
	}
	*committed = true

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(items)).
		Bool("review_required", len(shortfall) > 0).
		Msg("payment completed, order PAID")

	s.notifier.NotifyStatusChange(ctx, order, model.StatusPaid)

	return &CompletionResult{
		OrderID:           order.ID,
		Status:            model.StatusPaid,
		ShortfallProducts: shortfall,
	}, nil
}
