package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeCouponNotFound     = "COUPON_NOT_FOUND"
	ErrCodeCouponExpired      = "COUPON_EXPIRED"
	ErrCodeCouponLimitReached = "COUPON_USAGE_LIMIT_EXCEEDED"
	ErrCodeCouponMinimum      = "COUPON_MINIMUM_NOT_MET"
	ErrCodeGatewayFailure     = "GATEWAY_FAILURE"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeStockShortfall     = "STOCK_SHORTFALL"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError carries a stable machine-readable code alongside a
// human-readable message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Validation errors: reported to the caller, no state change.
var (
	ErrEmptyCart         = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock for one or more items")
	ErrCouponNotFound    = NewDomainError(ErrCodeCouponNotFound, "Coupon code not found")
	ErrCouponExpired     = NewDomainError(ErrCodeCouponExpired, "Coupon code has expired")
	ErrCouponLimit       = NewDomainError(ErrCodeCouponLimitReached, "Coupon usage limit exceeded")
	ErrCouponMinimum     = NewDomainError(ErrCodeCouponMinimum, "Cart subtotal below coupon minimum")
)

// Gateway and state-machine errors.
var (
	// ErrGatewayRejected means checkout initiation failed: no order was
	// persisted and the cart is untouched. Retryable by the customer.
	ErrGatewayRejected = NewDomainError(ErrCodeGatewayFailure, "Payment gateway rejected the checkout request")

	// ErrConflict means a stale state transition, e.g. cancelling an
	// already-shipped order. Nothing changed.
	ErrConflict = NewDomainError(ErrCodeConflict, "Order is not in a state that allows this operation")

	// ErrStockShortfall means a paid order could not decrement stock for
	// every item. The order stays PAID (money was collected) and is
	// flagged for manual operator review.
	ErrStockShortfall = NewDomainError(ErrCodeStockShortfall, "Stock shortfall detected at payment completion; order flagged for review")

	ErrOrderNotFound = NewDomainError(ErrCodeOrderNotFound, "Order not found")
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
