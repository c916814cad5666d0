package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"
	"github.com/gokturkdogan/olive-oil-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewProductRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("GetByIDs returns products keyed by id", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		a := SeedProduct(t, testDB.Pool, "Extra Virgin 500ml", 1000, 10)
		b := SeedProduct(t, testDB.Pool, "Olive Soap", 800, 5)

		products, err := repo.GetByIDs(ctx, []uuid.UUID{a, b, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, products, 2)
		assert.Equal(t, int64(1000), products[a].Price)
		assert.Equal(t, 5, products[b].Stock)
	})

	t.Run("DecrementStock succeeds while stock covers quantity", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		id := SeedProduct(t, testDB.Pool, "Koroneiki 750ml", 2200, 3)

		tx, err := orderRepo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		ok, err := repo.DecrementStock(ctx, tx, id, 2)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, tx.Commit(ctx))

		assert.Equal(t, 1, ProductStock(t, testDB.Pool, id))
	})

	t.Run("DecrementStock refuses to go negative", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		id := SeedProduct(t, testDB.Pool, "Limited Reserve", 4000, 1)

		tx, err := orderRepo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		ok, err := repo.DecrementStock(ctx, tx, id, 2)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, tx.Commit(ctx))

		// The failed condition leaves stock untouched.
		assert.Equal(t, 1, ProductStock(t, testDB.Pool, id))
	})

	t.Run("Concurrent decrements never oversell", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		id := SeedProduct(t, testDB.Pool, "Harvest Special", 3000, 5)

		const attempts = 10
		var wg sync.WaitGroup
		results := make(chan bool, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				tx, err := orderRepo.BeginTx(ctx)
				if err != nil {
					results <- false
					return
				}
				ok, err := repo.DecrementStock(ctx, tx, id, 1)
				if err != nil || !ok {
					tx.Rollback(ctx)
					results <- false
					return
				}
				if err := tx.Commit(ctx); err != nil {
					results <- false
					return
				}
				results <- true
			}()
		}
		wg.Wait()
		close(results)

		succeeded := 0
		for ok := range results {
			if ok {
				succeeded++
			}
		}

		assert.Equal(t, 5, succeeded)
		assert.Equal(t, 0, ProductStock(t, testDB.Pool, id))
	})

	t.Run("RestoreStock adds quantity back", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		id := SeedProduct(t, testDB.Pool, "Gift Box", 6000, 2)

		tx, err := orderRepo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		require.NoError(t, repo.RestoreStock(ctx, tx, id, 3))
		require.NoError(t, tx.Commit(ctx))

		assert.Equal(t, 5, ProductStock(t, testDB.Pool, id))
	})
}

func TestCartRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewCartRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("GetOrCreate is idempotent per owner", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		userID := SeedUser(t, testDB.Pool, "one@example.com", 0, "STANDARD")
		owner := model.CartOwner{UserID: &userID}

		first, err := repo.GetOrCreate(ctx, owner)
		require.NoError(t, err)
		second, err := repo.GetOrCreate(ctx, owner)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("UpsertItem replaces quantity for the same product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		userID := SeedUser(t, testDB.Pool, "two@example.com", 0, "STANDARD")
		productID := SeedProduct(t, testDB.Pool, "Extra Virgin 500ml", 1000, 10)

		cart, err := repo.GetOrCreate(ctx, model.CartOwner{UserID: &userID})
		require.NoError(t, err)

		require.NoError(t, repo.UpsertItem(ctx, cart.ID, productID, 2))
		require.NoError(t, repo.UpsertItem(ctx, cart.ID, productID, 5))

		items, err := repo.GetItems(ctx, cart.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 5, items[0].Quantity)
	})

	t.Run("MergeGuestCart sums quantities and drops the guest cart", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		userID := SeedUser(t, testDB.Pool, "three@example.com", 0, "STANDARD")
		shared := SeedProduct(t, testDB.Pool, "Olive Soap", 800, 20)
		guestOnly := SeedProduct(t, testDB.Pool, "Tapenade", 1200, 20)

		guestToken := "guest-merge"
		guestCart, err := repo.GetOrCreate(ctx, model.CartOwner{GuestToken: &guestToken})
		require.NoError(t, err)
		userCart, err := repo.GetOrCreate(ctx, model.CartOwner{UserID: &userID})
		require.NoError(t, err)

		require.NoError(t, repo.UpsertItem(ctx, guestCart.ID, shared, 2))
		require.NoError(t, repo.UpsertItem(ctx, guestCart.ID, guestOnly, 1))
		require.NoError(t, repo.UpsertItem(ctx, userCart.ID, shared, 3))

		require.NoError(t, repo.MergeGuestCart(ctx, guestToken, userID))

		items, err := repo.GetItems(ctx, userCart.ID)
		require.NoError(t, err)
		assert.Len(t, items, 2)

		quantities := map[uuid.UUID]int{}
		for _, item := range items {
			quantities[item.ProductID] = item.Quantity
		}
		assert.Equal(t, 5, quantities[shared])
		assert.Equal(t, 1, quantities[guestOnly])

		gone, err := repo.GetByOwner(ctx, model.CartOwner{GuestToken: &guestToken})
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}

func TestOrderRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewOrderRepository(testDB.Pool, logger)
	couponRepo := repository.NewCouponRepository(testDB.Pool, logger)

	ctx := context.Background()

	createOrder := func(t *testing.T, status model.OrderStatus, couponCode *string) (*model.Order, uuid.UUID) {
		t.Helper()

		productID := SeedProduct(t, testDB.Pool, "Extra Virgin 500ml", 1000, 10)

		order := &model.Order{
			ID: uuid.New(),
			Shipping: model.ShippingInfo{
				Name: "A Buyer", Address: "1 Grove Lane", Phone: "555-0101",
			},
			Subtotal:         2000,
			DiscountTotal:    200,
			ShippingFee:      2500,
			Total:            4300,
			Status:           status,
			PaymentReference: "tok_" + uuid.NewString()[:8],
			CouponCode:       couponCode,
		}
		items := []model.OrderItem{
			{
				ID: uuid.New(), OrderID: order.ID, ProductID: productID,
				TitleSnapshot: "Extra Virgin 500ml", UnitPriceSnapshot: 1000,
				Quantity: 2, LineTotal: 2000,
			},
		}

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, tx, order, items))
		require.NoError(t, tx.Commit(ctx))

		return order, productID
	}

	t.Run("Create then GetByID round-trips the snapshot", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		order, _ := createOrder(t, model.StatusPending, nil)

		got, items, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.StatusPending, got.Status)
		assert.Equal(t, int64(4300), got.Total)
		require.Len(t, items, 1)
		assert.Equal(t, "Extra Virgin 500ml", items[0].TitleSnapshot)
		assert.Equal(t, int64(1000), items[0].UnitPriceSnapshot)
	})

	t.Run("UpdateStatus is a compare-and-set", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		order, _ := createOrder(t, model.StatusPending, nil)

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		ok, err := repo.UpdateStatus(ctx, tx, order.ID, model.StatusPending, model.StatusPaid)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, tx.Commit(ctx))

		// A second transition from the stale status affects no rows.
		tx, err = repo.BeginTx(ctx)
		require.NoError(t, err)
		ok, err = repo.UpdateStatus(ctx, tx, order.ID, model.StatusPending, model.StatusFailed)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, tx.Commit(ctx))

		got, _, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPaid, got.Status)
	})

	t.Run("RecordUsage is exactly once per order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		code := "TEN"
		couponID := SeedCoupon(t, testDB.Pool, code, "PERCENT", 10, 0, 100)
		order, _ := createOrder(t, model.StatusPaid, &code)

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		recorded, err := couponRepo.RecordUsage(ctx, tx, couponID, order.ID)
		require.NoError(t, err)
		assert.True(t, recorded)
		require.NoError(t, tx.Commit(ctx))

		// Replaying the same order records nothing and moves no counter.
		tx, err = repo.BeginTx(ctx)
		require.NoError(t, err)
		recorded, err = couponRepo.RecordUsage(ctx, tx, couponID, order.ID)
		require.NoError(t, err)
		assert.False(t, recorded)
		require.NoError(t, tx.Commit(ctx))

		var usedCount int
		require.NoError(t, testDB.Pool.QueryRow(ctx,
			"SELECT used_count FROM coupons WHERE id = $1", couponID).Scan(&usedCount))
		assert.Equal(t, 1, usedCount)
	})

	t.Run("UpdateRefundStatus is a compare-and-set", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		order, _ := createOrder(t, model.StatusCancelled, nil)

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.SetRefundStatus(ctx, tx, order.ID, model.RefundManualRequired))
		require.NoError(t, tx.Commit(ctx))

		ok, err := repo.UpdateRefundStatus(ctx, order.ID, model.RefundManualRequired, model.RefundAutoCompleted)
		require.NoError(t, err)
		assert.True(t, ok)

		// The operator path loses the race once the automated refund won.
		ok, err = repo.UpdateRefundStatus(ctx, order.ID, model.RefundManualRequired, model.RefundManualCompleted)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestUserRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewUserRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("AddSpend accumulates and returns the new total", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		userID := SeedUser(t, testDB.Pool, "spender@example.com", 90_000, "STANDARD")

		tx, err := orderRepo.BeginTx(ctx)
		require.NoError(t, err)
		total, err := repo.AddSpend(ctx, tx, userID, 15_000)
		require.NoError(t, err)
		require.NoError(t, repo.SetTier(ctx, tx, userID, model.TierSilver))
		require.NoError(t, tx.Commit(ctx))

		assert.Equal(t, int64(105_000), total)

		user, err := repo.GetByID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(105_000), user.TotalSpent)
		assert.Equal(t, model.TierSilver, user.Tier)
	})
}
