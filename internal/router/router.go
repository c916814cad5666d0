package router

import (
	"net/http"

	"github.com/gokturkdogan/olive-oil-sub000/internal/handler"
	"github.com/gokturkdogan/olive-oil-sub000/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware
// configured. Admin routes sit behind API-key authentication; customer
// and gateway routes do not.
func New(
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	paymentHandler *handler.PaymentHandler,
	orderHandler *handler.OrderHandler,
	adminHandler *handler.AdminHandler,
	adminAPIKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Cart
	mux.HandleFunc("GET /api/cart", cartHandler.Get)
	mux.HandleFunc("POST /api/cart/items", cartHandler.AddItem)
	mux.HandleFunc("DELETE /api/cart/items/{productId}", cartHandler.RemoveItem)
	mux.HandleFunc("POST /api/cart/merge", cartHandler.MergeGuestCart)

	// Checkout and orders
	mux.HandleFunc("POST /api/checkout", checkoutHandler.Checkout)
	mux.HandleFunc("GET /api/orders/{id}", orderHandler.GetByID)
	mux.HandleFunc("POST /api/orders/{id}/cancel", orderHandler.Cancel)

	// Gateway callback; may be delivered more than once
	mux.HandleFunc("POST /api/payments/callback", paymentHandler.Callback)

	// Admin
	mux.HandleFunc("PUT /api/admin/orders/{id}/status", adminHandler.UpdateStatus)
	mux.HandleFunc("PUT /api/admin/orders/{id}/shipping", adminHandler.UpdateShipping)
	mux.HandleFunc("POST /api/admin/orders/{id}/refund-completed", adminHandler.MarkRefundCompleted)

	// Apply middleware in order: Recovery -> Logging -> CORS -> AdminAPIKey
	var h http.Handler = mux
	h = middleware.AdminAPIKey(adminAPIKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
