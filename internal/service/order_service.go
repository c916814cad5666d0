package service

import (
	"context"
	"fmt"

	"github.com/gokturkdogan/olive-oil-sub000/internal/gateway"
	"github.com/gokturkdogan/olive-oil-sub000/internal/loyalty"
	"github.com/gokturkdogan/olive-oil-sub000/internal/model"
	"github.com/gokturkdogan/olive-oil-sub000/internal/notify"
	"github.com/gokturkdogan/olive-oil-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderService implements OrderService: reads, the admin fulfilment
// chain, cancellation with stock restore, and refund bookkeeping.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	gw          gateway.Gateway
	notifier    notify.Notifier
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	gw gateway.Gateway,
	notifier notify.Notifier,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		gw:          gw,
		notifier:    notifier,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}
	return &model.OrderResponse{Order: *order, Items: items}, nil
}

// UpdateStatus drives the admin fulfilment chain. Payment settlement
// (PENDING -> PAID/FAILED) belongs to the completion handler and
// cancellation has its own path, so those targets are rejected here.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus model.OrderStatus) error {
	if !newStatus.Valid() {
		return model.ErrConflict
	}
	switch newStatus {
	case model.StatusFailed, model.StatusCancelled, model.StatusPending:
		return model.ErrConflict
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
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
		return err
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	if !order.Status.CanTransition(newStatus) {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("from", string(order.Status)).
			Str("to", string(newStatus)).
			Msg("rejected status transition")
		return model.ErrConflict
	}

	ok, err := s.orderRepo.UpdateStatus(ctx, tx, orderID, order.Status, newStatus)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrConflict
	}

	// Loyalty moves only on the transition into DELIVERED. The row lock
	// plus the CAS above make a duplicate admin click a no-op: the second
	// attempt no longer sees a SHIPPED order.
	if newStatus == model.StatusDelivered {
		if err := s.recordDeliveredSpend(ctx, tx, order); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	committed = true

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("from", string(order.Status)).
		Str("to", string(newStatus)).
		Msg("order status updated")

	s.notifier.NotifyStatusChange(ctx, order, newStatus)

	return nil
}

// recordDeliveredSpend adds the order total to the user's cumulative
// spend and recomputes the tier. Guest orders carry no loyalty.
func (s *orderService) recordDeliveredSpend(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	if order.UserID == nil {
		return nil
	}

	total, err := s.userRepo.AddSpend(ctx, tx, *order.UserID, order.Total)
	if err != nil {
		return err
	}

	tier := loyalty.TierFor(total)
	if err := s.userRepo.SetTier(ctx, tx, *order.UserID, tier); err != nil {
		return err
	}

	s.logger.Info().
		Str("user_id", order.UserID.String()).
		Int64("total_spent", total).
		Str("tier", string(tier)).
		Msg("loyalty updated on delivery")

	return nil
}

// UpdateShipping records provider and tracking, implicitly moving the
// order to SHIPPED. Re-invoking on an already SHIPPED order just
// refreshes the tracking details.
func (s *orderService) UpdateShipping(ctx context.Context, orderID uuid.UUID, provider, trackingCode string) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to update shipping: %w", err)
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
		return err
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	if order.Status != model.StatusShipped {
		if !order.Status.CanTransition(model.StatusShipped) {
			return model.ErrConflict
		}
		ok, err := s.orderRepo.UpdateStatus(ctx, tx, orderID, order.Status, model.StatusShipped)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrConflict
		}
	}

	if err := s.orderRepo.SetShipping(ctx, tx, orderID, provider, trackingCode); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to update shipping: %w", err)
	}
	committed = true

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("provider", provider).
		Str("tracking_code", trackingCode).
		Msg("shipping recorded, order SHIPPED")

	s.notifier.NotifyStatusChange(ctx, order, model.StatusShipped)

	return nil
}

// Cancel transitions a pre-shipment order to CANCELLED. Stock is
// restored when it was already decremented. When money was collected,
// refund_status is set to MANUAL_REQUIRED inside the cancel transaction
// before the gateway is asked for an automated refund, so a crash
// between commit and refund can never leave collected money without a
// refund record; a successful automated refund upgrades it to
// AUTO_COMPLETED afterwards.
func (s *orderService) Cancel(ctx context.Context, orderID uuid.UUID, reason string) error {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
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
		return err
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	// Cancellation races the payment callback for the same order; the
	// row lock serialises them and the status check decides the winner.
	if !order.Status.Cancellable() {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("status", string(order.Status)).
			Msg("rejected cancellation")
		return model.ErrConflict
	}

	ok, err := s.orderRepo.UpdateStatus(ctx, tx, orderID, order.Status, model.StatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrConflict
	}

	paymentCollected := order.Status.StockCommitted()

	if paymentCollected {
		items, err := s.orderRepo.GetItems(ctx, tx, orderID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := s.productRepo.RestoreStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := s.orderRepo.SetRefundStatus(ctx, tx, orderID, model.RefundManualRequired); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	committed = true

	s.logger.Info().
		Str("order_id", orderID.String()).
		Bool("payment_collected", paymentCollected).
		Msg("order cancelled")

	if paymentCollected {
		s.attemptAutoRefund(ctx, order)
	}

	s.notifier.NotifyCancellation(ctx, order, reason)

	return nil
}

// attemptAutoRefund asks the gateway to return the payment. Success
// upgrades MANUAL_REQUIRED to AUTO_COMPLETED; failure leaves the manual
// record for an operator. No database lock is held during the call.
func (s *orderService) attemptAutoRefund(ctx context.Context, order *model.Order) {
	if err := s.gw.Refund(ctx, order.PaymentReference); err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("automated refund failed, manual refund required")
		return
	}

	ok, err := s.orderRepo.UpdateRefundStatus(ctx, order.ID, model.RefundManualRequired, model.RefundAutoCompleted)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to record automated refund")
		return
	}
	if !ok {
		// An operator already marked it completed; the money side is
		// reconciled either way.
		s.logger.Info().Str("order_id", order.ID.String()).Msg("refund already reconciled")
		return
	}

	s.logger.Info().Str("order_id", order.ID.String()).Msg("automated refund completed")
}

// MarkRefundCompleted is the operator acknowledgement for manual
// refunds.
func (s *orderService) MarkRefundCompleted(ctx context.Context, orderID uuid.UUID) error {
	ok, err := s.orderRepo.UpdateRefundStatus(ctx, orderID, model.RefundManualRequired, model.RefundManualCompleted)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrConflict
	}

	s.logger.Info().Str("order_id", orderID.String()).Msg("manual refund marked completed")

	return nil
}
