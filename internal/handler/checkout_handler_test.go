package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCheckoutService is a mock implementation of service.CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Checkout(ctx context.Context, owner model.CartOwner, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	args := m.Called(ctx, owner, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResponse), args.Error(1)
}

func TestCheckoutHandler_Checkout(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()
	userID := uuid.New()

	validBody := `{"shipping":{"name":"A Buyer","address":"1 Grove Lane","phone":"555-0101"},"couponCode":"TEN"}`

	tests := []struct {
		name           string
		userHeader     string
		guestHeader    string
		body           string
		mockReturn     *model.CheckoutResponse
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{
			name:           "Registered user checkout",
			userHeader:     userID.String(),
			body:           validBody,
			mockReturn:     &model.CheckoutResponse{OrderID: orderID, RedirectURL: "https://pay.example.com/t", Total: 4300},
			expectService:  true,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Guest checkout",
			guestHeader:    "guest-abc",
			body:           validBody,
			mockReturn:     &model.CheckoutResponse{OrderID: orderID, RedirectURL: "https://pay.example.com/t", Total: 4300},
			expectService:  true,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Gateway declined",
			userHeader:     userID.String(),
			body:           validBody,
			mockError:      model.ErrGatewayRejected,
			expectService:  true,
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "Empty cart",
			userHeader:     userID.String(),
			body:           validBody,
			mockError:      model.ErrEmptyCart,
			expectService:  true,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Insufficient stock",
			userHeader:     userID.String(),
			body:           validBody,
			mockError:      model.ErrInsufficientStock,
			expectService:  true,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing identity",
			body:           validBody,
			expectService:  false,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed identity header",
			userHeader:     "not-a-uuid",
			body:           validBody,
			expectService:  false,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed body",
			userHeader:     userID.String(),
			body:           `{"shipping":`,
			expectService:  false,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCheckoutService)
			h := NewCheckoutHandler(mockService, logger)

			if tt.expectService {
				mockService.On("Checkout", mock.Anything, mock.AnythingOfType("model.CartOwner"), mock.AnythingOfType("*model.CheckoutRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader([]byte(tt.body)))
			if tt.userHeader != "" {
				req.Header.Set("X-User-ID", tt.userHeader)
			}
			if tt.guestHeader != "" {
				req.Header.Set("X-Guest-Token", tt.guestHeader)
			}
			rec := httptest.NewRecorder()

			h.Checkout(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusCreated {
				var got model.CheckoutResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, orderID, got.OrderID)
				assert.NotEmpty(t, got.RedirectURL)
			}

			mockService.AssertExpectations(t)
		})
	}
}
