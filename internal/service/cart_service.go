package service

import (
	"context"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"
	"github.com/gokturkdogan/olive-oil-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get retrieves the owner's cart and items, creating an empty cart if
// none exists.
func (s *cartService) Get(ctx context.Context, owner model.CartOwner) (*model.Cart, []model.CartItem, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.cartRepo.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, nil, err
	}

	return cart, items, nil
}

// AddItem sets the quantity for a product in the owner's cart. Stock is
// only advisory at this point; the authoritative check happens at
// checkout snapshot time and again at payment completion.
func (s *cartService) AddItem(ctx context.Context, owner model.CartOwner, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return model.ErrInvalidQuantity
	}

	products, err := s.productRepo.GetByIDs(ctx, []uuid.UUID{productID})
	if err != nil {
		return err
	}
	if _, ok := products[productID]; !ok {
		return model.ErrProductNotFound
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, owner)
	if err != nil {
		return err
	}

	if err := s.cartRepo.UpsertItem(ctx, cart.ID, productID, quantity); err != nil {
		return err
	}

	s.logger.Debug().
		Str("cart_id", cart.ID.String()).
		Str("product_id", productID.String()).
		Int("quantity", quantity).
		Msg("cart item set")

	return nil
}

// RemoveItem removes a product from the owner's cart.
func (s *cartService) RemoveItem(ctx context.Context, owner model.CartOwner, productID uuid.UUID) error {
	cart, err := s.cartRepo.GetByOwner(ctx, owner)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}

	return s.cartRepo.RemoveItem(ctx, cart.ID, productID)
}

// MergeGuestCart folds a guest cart into a user's cart on login.
func (s *cartService) MergeGuestCart(ctx context.Context, guestToken string, userID uuid.UUID) error {
	return s.cartRepo.MergeGuestCart(ctx, guestToken, userID)
}
