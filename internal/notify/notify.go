// Package notify is the best-effort notification collaborator. Failures
// here are logged and swallowed; they never roll back or block an order
// state transition.
package notify

import (
	"context"

	"github.com/gokturkdogan/olive-oil-sub000/internal/model"

	"github.com/rs/zerolog"
)

// Notifier announces order lifecycle events to the customer.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, order *model.Order, newStatus model.OrderStatus)
	NotifyCancellation(ctx context.Context, order *model.Order, reason string)
}

// logNotifier records notifications in the application log. Actual
// email delivery is an external concern behind the same interface.
type logNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a notifier that only logs.
func NewLogNotifier(logger zerolog.Logger) Notifier {
	return &logNotifier{
		logger: logger.With().Str("component", "notifier").Logger(),
	}
}

func (n *logNotifier) NotifyStatusChange(ctx context.Context, order *model.Order, newStatus model.OrderStatus) {
	n.logger.Info().
		Str("order_id", order.ID.String()).
		Str("new_status", string(newStatus)).
		Msg("order status notification")
}

func (n *logNotifier) NotifyCancellation(ctx context.Context, order *model.Order, reason string) {
	n.logger.Info().
		Str("order_id", order.ID.String()).
		Str("reason", reason).
		Msg("order cancellation notification")
}
