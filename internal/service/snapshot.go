package service

import (
	"context"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"
	"github.com/gokturkdogan/olive-oil-sub000/internal/repository"

	"github.com/google/uuid"
)

// snapshotCart freezes live cart items into immutable priced drafts. It
// re-validates current stock against each requested quantity, because
// cart contents can go stale between add-to-cart and checkout. The cart
// itself is not mutated.
func snapshotCart(ctx context.Context, productRepo repository.ProductRepository, items []model.CartItem) ([]model.OrderItemDraft, error) {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	drafts := make([]model.OrderItemDraft, 0, len(items))
	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			return nil, model.ErrProductNotFound
		}
		if item.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		if p.Stock < item.Quantity {
			return nil, model.ErrInsufficientStock
		}

		drafts = append(drafts, model.OrderItemDraft{
			ProductID:         p.ID,
			TitleSnapshot:     p.Name,
			UnitPriceSnapshot: p.Price,
			Quantity:          item.Quantity,
			LineTotal:         p.Price * int64(item.Quantity),
		})
	}

	return drafts, nil
}
