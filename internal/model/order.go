package model

import (
	"time"

	"github.com/google/uuid"
)

// ShippingInfo is the delivery snapshot captured at checkout.
type ShippingInfo struct {
	Name    string `json:"name" db:"shipping_name"`
	Address string `json:"address" db:"shipping_address"`
	Phone   string `json:"phone" db:"shipping_phone"`
}

// Order is created only after the payment gateway has accepted the
// checkout request. Monetary fields, the shipping snapshot and the items
// are immutable once written; only status, payment reference, shipping
// provider/tracking and refund status may change afterwards.
type Order struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	UserID           *uuid.UUID    `json:"userId,omitempty" db:"user_id"`
	GuestToken       *string       `json:"guestToken,omitempty" db:"guest_token"`
	Shipping         ShippingInfo  `json:"shipping"`
	Subtotal         int64         `json:"subtotal" db:"subtotal"`
	DiscountTotal    int64         `json:"discountTotal" db:"discount_total"`
	ShippingFee      int64         `json:"shippingFee" db:"shipping_fee"`
	Total            int64         `json:"total" db:"total"` // subtotal - discount_total + shipping_fee
	Status           OrderStatus   `json:"status" db:"status"`
	PaymentReference string        `json:"paymentReference" db:"payment_reference"`
	CouponCode       *string       `json:"couponCode,omitempty" db:"coupon_code"`
	RefundStatus     *RefundStatus `json:"refundStatus,omitempty" db:"refund_status"`
	ShippingProvider *string       `json:"shippingProvider,omitempty" db:"shipping_provider"`
	TrackingCode     *string       `json:"trackingCode,omitempty" db:"tracking_code"`
	ReviewRequired   bool          `json:"reviewRequired" db:"review_required"`
	CreatedAt        time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt" db:"updated_at"`
}

// OrderItem is an immutable price and title snapshot taken from the
// product at checkout time. It never re-reads live catalog data, which
// keeps historical orders stable against later edits.
type OrderItem struct {
	ID                uuid.UUID `json:"-" db:"id"`
	OrderID           uuid.UUID `json:"-" db:"order_id"`
	ProductID         uuid.UUID `json:"productId" db:"product_id"`
	TitleSnapshot     string    `json:"title" db:"title_snapshot"`
	UnitPriceSnapshot int64     `json:"unitPrice" db:"unit_price_snapshot"`
	Quantity          int       `json:"quantity" db:"quantity"`
	LineTotal         int64     `json:"lineTotal" db:"line_total"`
}

// OrderItemDraft is the output of the cart snapshot step: a priced,
// stock-validated line item that has not been persisted yet.
type OrderItemDraft struct {
	ProductID         uuid.UUID
	TitleSnapshot     string
	UnitPriceSnapshot int64
	Quantity          int
	LineTotal         int64
}

// CheckoutRequest is the customer-facing payload that starts a checkout
// attempt.
type CheckoutRequest struct {
	Shipping   ShippingInfo `json:"shipping"`
	CouponCode *string      `json:"couponCode,omitempty"`
}

// CheckoutResponse carries the gateway redirect the customer must follow
// to pay.
type CheckoutResponse struct {
	OrderID     uuid.UUID `json:"orderId"`
	RedirectURL string    `json:"redirectUrl"`
	Total       int64     `json:"total"`
}

// OrderResponse is the read model returned to customers and admins.
type OrderResponse struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
