package coupon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCouponRepository is a mock implementation of repository.CouponRepository.
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) RecordUsage(ctx context.Context, tx pgx.Tx, couponID, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, couponID, orderID)
	return args.Bool(0), args.Error(1)
}

func TestLedger_Validate(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	tests := []struct {
		name             string
		coupon           *model.Coupon
		repoErr          error
		subtotal         int64
		expectedDiscount int64
		expectedErr      error
	}{
		{
			name: "Valid percentage coupon",
			coupon: &model.Coupon{
				ID: uuid.New(), Code: "TEN", Type: model.DiscountPercent, Value: 10,
				UsageLimit: 100, UsedCount: 5, ExpiresAt: &future,
			},
			subtotal:         2000,
			expectedDiscount: 200,
		},
		{
			name: "Valid fixed coupon with no expiry",
			coupon: &model.Coupon{
				ID: uuid.New(), Code: "FLAT500", Type: model.DiscountFixed, Value: 500,
			},
			subtotal:         2000,
			expectedDiscount: 500,
		},
		{
			name:        "Unknown code",
			coupon:      nil,
			subtotal:    2000,
			expectedErr: model.ErrCouponNotFound,
		},
		{
			name: "Expired coupon",
			coupon: &model.Coupon{
				ID: uuid.New(), Code: "OLD", Type: model.DiscountPercent, Value: 10,
				ExpiresAt: &past,
			},
			subtotal:    2000,
			expectedErr: model.ErrCouponExpired,
		},
		{
			name: "Usage limit reached",
			coupon: &model.Coupon{
				ID: uuid.New(), Code: "BUSY", Type: model.DiscountPercent, Value: 10,
				UsageLimit: 10, UsedCount: 10,
			},
			subtotal:    2000,
			expectedErr: model.ErrCouponLimit,
		},
		{
			name: "Subtotal below minimum",
			coupon: &model.Coupon{
				ID: uuid.New(), Code: "BIGONLY", Type: model.DiscountPercent, Value: 10,
				MinSubtotal: 5000,
			},
			subtotal:    2000,
			expectedErr: model.ErrCouponMinimum,
		},
		{
			name:        "Repository error",
			repoErr:     errors.New("database error"),
			subtotal:    2000,
			expectedErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCouponRepository)
			mockRepo.On("GetByCode", ctx, mock.AnythingOfType("string")).Return(tt.coupon, tt.repoErr)

			ledger := NewLedger(mockRepo, logger)

			code := "TEN"
			if tt.coupon != nil {
				code = tt.coupon.Code
			}
			discount, c, err := ledger.Validate(ctx, code, tt.subtotal)

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.expectedErr.Error(), err.Error())
				assert.Nil(t, c)
				assert.Zero(t, discount)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedDiscount, discount)
				assert.Equal(t, tt.coupon, c)
			}

			// Validation never reserves usage.
			mockRepo.AssertNotCalled(t, "RecordUsage")
		})
	}
}

func TestLedger_Validate_ZeroLimitMeansUnlimited(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	coupon := &model.Coupon{
		ID: uuid.New(), Code: "FOREVER", Type: model.DiscountFixed, Value: 100,
		UsageLimit: 0, UsedCount: 100_000,
	}

	mockRepo := new(MockCouponRepository)
	mockRepo.On("GetByCode", ctx, "FOREVER").Return(coupon, nil)

	ledger := NewLedger(mockRepo, logger)

	discount, c, err := ledger.Validate(ctx, "FOREVER", 2000)

	require.NoError(t, err)
	assert.Equal(t, int64(100), discount)
	assert.NotNil(t, c)
}
