package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gokturkdogan/olive-oil-sub000/internal/gateway"
	"github.com/gokturkdogan/olive-oil-sub000/internal/model"
	"github.com/gokturkdogan/olive-oil-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentHandler receives payment gateway callbacks.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment callback handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// callbackPayload is the wire format the gateway posts back. Deliveries
// may repeat; the completion handler is idempotent.
type callbackPayload struct {
	OrderID   uuid.UUID `json:"orderId"`
	Status    string    `json:"status"`
	PaymentID string    `json:"paymentId"`
	Token     string    `json:"token"`
}

// Callback handles POST /api/payments/callback requests.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var payload callbackPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid callback payload", h.logger)
		return
	}

	if payload.OrderID == uuid.Nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "order id is required", h.logger)
		return
	}

	result, err := h.service.Complete(r.Context(), payload.OrderID, gateway.CallbackResult{
		Status:    payload.Status,
		PaymentID: payload.PaymentID,
		Token:     payload.Token,
	})
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
