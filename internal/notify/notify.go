package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/onedream/storefront/internal/models"
	"go.uber.org/zap"
)

// NewOrderEvent is what operators receive when the watcher spots an order
type NewOrderEvent struct {
	Type      string        `json:"type"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	OrderID   string        `json:"orderId"`
	OrderData *models.Order `json:"orderData,omitempty"`
	ActionURL string        `json:"actionUrl"`
}

// EventForOrder builds the operator-facing event for a freshly seen order
func EventForOrder(order models.Order) NewOrderEvent {
	amount := strconv.FormatFloat(order.TotalAmount, 'f', -1, 64)
	o := order
	return NewOrderEvent{
		Type:      "order",
		Title:     "New Order",
		Message:   fmt.Sprintf("%s placed an order for %s - %s", order.UserName, order.ProductName, amount),
		OrderID:   order.OrderID,
		OrderData: &o,
		ActionURL: "/admin/orders/" + order.OrderID,
	}
}

// Notifier delivers new-order events to the operator channel
type Notifier interface {
	NotifyNewOrder(ctx context.Context, event NewOrderEvent) error
}

// LogNotifier writes events to the log. Used when no broker is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates new LogNotifier instance
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyNewOrder logs the event
func (ln *LogNotifier) NotifyNewOrder(_ context.Context, event NewOrderEvent) error {
	ln.logger.Info("new order",
		zap.String("order", event.OrderID),
		zap.String("message", event.Message))
	return nil
}
