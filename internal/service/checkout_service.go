package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gokturkdogan/olive-oil-sub000/internal/coupon"
	"github.com/gokturkdogan/olive-oil-sub000/internal/gateway"
	"github.com/gokturkdogan/olive-oil-sub000/internal/model"
	"github.com/gokturkdogan/olive-oil-sub000/internal/pricing"
	"github.com/gokturkdogan/olive-oil-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService. It sequences snapshot,
// pricing, coupon validation, gateway initiation and order persistence,
// in that order: the gateway call comes first, the order row second, so
// a rejected or failed initiation leaves nothing behind and the customer
// can simply retry with the same cart.
type checkoutService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	ledger      coupon.Ledger
	gw          gateway.Gateway
	pricingCfg  pricing.Config
	callbackURL string
	logger      zerolog.Logger
}

// NewCheckoutService creates a new checkout orchestrator.
func NewCheckoutService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	ledger coupon.Ledger,
	gw gateway.Gateway,
	pricingCfg pricing.Config,
	callbackURL string,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		ledger:      ledger,
		gw:          gw,
		pricingCfg:  pricingCfg,
		callbackURL: callbackURL,
		logger:      logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout runs one checkout attempt for the owner's cart.
func (s *checkoutService) Checkout(ctx context.Context, owner model.CartOwner, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("checkout request is nil")
	}

	cart, err := s.cartRepo.GetByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, model.ErrEmptyCart
	}

	cartItems, err := s.cartRepo.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, model.ErrEmptyCart
	}

	drafts, err := snapshotCart(ctx, s.productRepo, cartItems)
	if err != nil {
		s.logger.Warn().
			Str("cart_id", cart.ID.String()).
			Err(err).
			Msg("cart snapshot failed")
		return nil, err
	}

	var subtotal int64
	for _, d := range drafts {
		subtotal += d.LineTotal
	}

	tier := model.TierStandard
	buyerEmail := ""
	if owner.UserID != nil {
		user, err := s.userRepo.GetByID(ctx, *owner.UserID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			tier = user.Tier
			buyerEmail = user.Email
		}
	}

	// Coupon validation is read-only; usage is committed on confirmed
	// payment, not here.
	var couponDiscount int64
	if req.CouponCode != nil && *req.CouponCode != "" {
		couponDiscount, _, err = s.ledger.Validate(ctx, *req.CouponCode, subtotal)
		if err != nil {
			s.logger.Warn().
				Str("coupon_code", *req.CouponCode).
				Err(err).
				Msg("coupon validation failed")
			return nil, err
		}
	}

	quote := pricing.Calculate(drafts, couponDiscount, tier, s.pricingCfg)

	// The gateway sees a temporary correlation id: no order exists yet,
	// and none will unless the gateway accepts.
	correlationID := uuid.New()

	gwItems := make([]gateway.CheckoutItem, len(drafts))
	for i, d := range drafts {
		gwItems[i] = gateway.CheckoutItem{
			Title:     d.TitleSnapshot,
			UnitPrice: d.UnitPriceSnapshot,
			Quantity:  d.Quantity,
		}
	}

	session, err := s.gw.InitiateCheckout(ctx, gateway.CheckoutRequest{
		CorrelationID: correlationID,
		BuyerEmail:    buyerEmail,
		Total:         quote.Total,
		Items:         gwItems,
		CallbackURL:   s.callbackURL,
	})
	if err != nil {
		s.logger.Warn().
			Str("correlation_id", correlationID.String()).
			Err(err).
			Msg("gateway initiation failed, no order persisted")
		return nil, model.ErrGatewayRejected
	}
	if session.Status != gateway.StatusSuccess {
		s.logger.Warn().
			Str("correlation_id", correlationID.String()).
			Str("gateway_status", session.Status).
			Msg("gateway declined checkout, no order persisted")
		return nil, model.ErrGatewayRejected
	}

	// Gateway accepted: persist the order and its items atomically. The
	// order is born PENDING; stock, coupon usage, cart clearing and
	// loyalty all wait for the payment callback.
	now := time.Now()
	order := &model.Order{
		ID:               uuid.New(),
		UserID:           owner.UserID,
		GuestToken:       owner.GuestToken,
		Shipping:         req.Shipping,
		Subtotal:         quote.Subtotal,
		DiscountTotal:    quote.DiscountTotal,
		ShippingFee:      quote.ShippingFee,
		Total:            quote.Total,
		Status:           model.StatusPending,
		PaymentReference: session.Token,
		CouponCode:       req.CouponCode,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	orderItems := make([]model.OrderItem, len(drafts))
	for i, d := range drafts {
		orderItems[i] = model.OrderItem{
			ID:                uuid.New(),
			OrderID:           order.ID,
			ProductID:         d.ProductID,
			TitleSnapshot:     d.TitleSnapshot,
			UnitPriceSnapshot: d.UnitPriceSnapshot,
			Quantity:          d.Quantity,
			LineTotal:         d.LineTotal,
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.Create(ctx, tx, order, orderItems); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_reference", session.Token).
		Int64("total", quote.Total).
		Int("item_count", len(orderItems)).
		Msg("order persisted, awaiting payment")

	return &model.CheckoutResponse{
		OrderID:     order.ID,
		RedirectURL: session.RedirectURL,
		Total:       quote.Total,
	}, nil
}
