package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"
	"github.com/gokturkdogan/olive-oil-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// cartResponse bundles a cart with its items.
type cartResponse struct {
	Cart  model.Cart       `json:"cart"`
	Items []model.CartItem `json:"items"`
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "missing or invalid identity", h.logger)
		return
	}

	cart, items, err := h.service.Get(r.Context(), owner)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{Cart: *cart, Items: items})
}

type cartItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "missing or invalid identity", h.logger)
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.AddItem(r.Context(), owner, req.ProductID, req.Quantity); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveItem handles DELETE /api/cart/items/{productId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "missing or invalid identity", h.logger)
		return
	}

	productID, err := uuid.Parse(r.PathValue("productId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid product ID format", h.logger)
		return
	}

	if err := h.service.RemoveItem(r.Context(), owner, productID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MergeGuestCart handles POST /api/cart/merge requests, folding a guest
// cart into the authenticated user's cart after login.
func (h *CartHandler) MergeGuestCart(w http.ResponseWriter, r *http.Request) {
	userRaw := r.Header.Get("X-User-ID")
	userID, err := uuid.Parse(userRaw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "missing or invalid identity", h.logger)
		return
	}

	var req struct {
		GuestToken string `json:"guestToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GuestToken == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "guestToken is required", h.logger)
		return
	}

	if err := h.service.MergeGuestCart(r.Context(), req.GuestToken, userID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
