package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"
	"github.com/gokturkdogan/olive-oil-sub000/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler handles operator-facing order HTTP requests.
type AdminHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service service.OrderService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// UpdateStatus handles PUT /api/admin/orders/{id}/status requests.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid order ID format", h.logger)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), orderID, req.Status); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

type updateShippingRequest struct {
	Provider     string `json:"provider"`
	TrackingCode string `json:"trackingCode"`
}

// UpdateShipping handles PUT /api/admin/orders/{id}/shipping requests.
// Recording shipping details implicitly transitions the order to
// SHIPPED.
func (h *AdminHandler) UpdateShipping(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid order ID format", h.logger)
		return
	}

	var req updateShippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if req.Provider == "" || req.TrackingCode == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "provider and trackingCode are required", h.logger)
		return
	}

	if err := h.service.UpdateShipping(r.Context(), orderID, req.Provider, req.TrackingCode); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(model.StatusShipped)})
}

// MarkRefundCompleted handles POST /api/admin/orders/{id}/refund-completed
// requests.
func (h *AdminHandler) MarkRefundCompleted(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid order ID format", h.logger)
		return
	}

	if err := h.service.MarkRefundCompleted(r.Context(), orderID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"refundStatus": string(model.RefundManualCompleted)})
}
