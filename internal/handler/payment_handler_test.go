package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gokturkdogan/olive-oil-sub000/internal/gateway"
	"github.com/gokturkdogan/olive-oil-sub000/internal/model"
	"github.com/gokturkdogan/olive-oil-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPaymentService is a mock implementation of service.PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Complete(ctx context.Context, orderID uuid.UUID, result gateway.CallbackResult) (*service.CompletionResult, error) {
	args := m.Called(ctx, orderID, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CompletionResult), args.Error(1)
}

func TestPaymentHandler_Callback(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	tests := []struct {
		name           string
		body           string
		mockReturn     *service.CompletionResult
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{
			name:           "Successful payment",
			body:           fmt.Sprintf(`{"orderId":%q,"status":"success","paymentId":"pay_1","token":"tok_1"}`, orderID),
			mockReturn:     &service.CompletionResult{OrderID: orderID, Status: model.StatusPaid},
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Failed payment",
			body:           fmt.Sprintf(`{"orderId":%q,"status":"failure","token":"tok_1"}`, orderID),
			mockReturn:     &service.CompletionResult{OrderID: orderID, Status: model.StatusFailed},
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Duplicate delivery still returns OK",
			body:           fmt.Sprintf(`{"orderId":%q,"status":"success","token":"tok_1"}`, orderID),
			mockReturn:     &service.CompletionResult{OrderID: orderID, Status: model.StatusPaid, AlreadyProcessed: true},
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unknown order",
			body:           fmt.Sprintf(`{"orderId":%q,"status":"success","token":"tok_1"}`, orderID),
			mockError:      model.ErrOrderNotFound,
			expectService:  true,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Missing order id",
			body:           `{"status":"success","token":"tok_1"}`,
			expectService:  false,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed payload",
			body:           `{"orderId":`,
			expectService:  false,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPaymentService)
			h := NewPaymentHandler(mockService, logger)

			if tt.expectService {
				mockService.On("Complete", mock.Anything, orderID, mock.AnythingOfType("gateway.CallbackResult")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/payments/callback", bytes.NewReader([]byte(tt.body)))
			rec := httptest.NewRecorder()

			h.Callback(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusOK {
				var got service.CompletionResult
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, tt.mockReturn.Status, got.Status)
				assert.Equal(t, tt.mockReturn.AlreadyProcessed, got.AlreadyProcessed)
			}

			mockService.AssertExpectations(t)
		})
	}
}
