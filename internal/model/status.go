package model

// OrderStatus is the closed set of states an order can be in.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusPaid       OrderStatus = "PAID"
	StatusFailed     OrderStatus = "FAILED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// RefundStatus tracks refund bookkeeping for cancelled orders that had
// collected money.
type RefundStatus string

const (
	RefundAutoCompleted   RefundStatus = "AUTO_COMPLETED"
	RefundManualRequired  RefundStatus = "MANUAL_REQUIRED"
	RefundManualCompleted RefundStatus = "MANUAL_COMPLETED"
)

// transitions encodes every legal status transition as a table. Payment
// completion moves PENDING to PAID or FAILED; the fulfilment chain
// PAID -> PROCESSING -> SHIPPED -> DELIVERED is admin-driven, navigable
// forward and one step backward; cancellation is allowed only before
// shipment. FAILED, DELIVERED and CANCELLED are terminal.
var transitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusPaid:      true,
		StatusFailed:    true,
		StatusCancelled: true,
	},
	StatusPaid: {
		StatusProcessing: true,
		StatusCancelled:  true,
	},
	StatusProcessing: {
		StatusPaid:      true,
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusProcessing: true,
		StatusDelivered:  true,
	},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	return transitions[s][next]
}

// Cancellable reports whether an order in this status may still be
// cancelled by a user or an admin.
func (s OrderStatus) Cancellable() bool {
	switch s {
	case StatusPending, StatusPaid, StatusProcessing:
		return true
	}
	return false
}

// StockCommitted reports whether stock has already been decremented for
// an order in this status. The completion handler decrements stock on
// the PENDING -> PAID transition, so every post-payment status carries
// committed stock.
func (s OrderStatus) StockCommitted() bool {
	switch s {
	case StatusPaid, StatusProcessing, StatusShipped, StatusDelivered:
		return true
	}
	return false
}
