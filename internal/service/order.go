package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/onedream/storefront/internal/metrics"
	"github.com/onedream/storefront/internal/models"
	"github.com/onedream/storefront/internal/orderid"
	"go.uber.org/zap"
)

// how many order codes to try before giving up on the random tail
const maxCodeAttempts = 5

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts new order, assigning the store document id
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByCode returns order by its human-readable code
	GetOrderByCode(ctx context.Context, code string) (*models.Order, error)
	// ListOrders returns orders matching the filter
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	// UpdateOrderStatus updates only the status, updated_at and version fields
	UpdateOrderStatus(ctx context.Context, code, status string, updatedAt time.Time, version int64) error
	// DeleteOrder removes the order permanently
	DeleteOrder(ctx context.Context, code string) error
}

// OrderService owns the order lifecycle: it is the only writer of order
// status into the store
type OrderService struct {
	repo   OrderRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewOrderService creates new OrderService instance
func NewOrderService(repo OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// validateNewOrder checks the required commerce fields of a checkout request
func validateNewOrder(order *models.Order) error {
	switch {
	case strings.TrimSpace(order.UserID) == "":
		return fmt.Errorf("%w: userId is required", models.ErrValidation)
	case strings.TrimSpace(order.UserName) == "":
		return fmt.Errorf("%w: userName is required", models.ErrValidation)
	case strings.TrimSpace(order.UserEmail) == "":
		return fmt.Errorf("%w: userEmail is required", models.ErrValidation)
	case strings.TrimSpace(order.ProductType) == "":
		return fmt.Errorf("%w: productType is required", models.ErrValidation)
	case strings.TrimSpace(order.ProductName) == "":
		return fmt.Errorf("%w: productName is required", models.ErrValidation)
	case order.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", models.ErrValidation)
	case order.UnitPrice < 0:
		return fmt.Errorf("%w: unitPrice must not be negative", models.ErrValidation)
	}
	return nil
}

// Create validates the checkout request, computes the total, assigns an
// order code and persists the order in Pending status. The code's random
// tail is short, so creation retries with a fresh code when the store
// reports a collision.
func (os *OrderService) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := validateNewOrder(order); err != nil {
		return nil, err
	}

	now := os.now().UTC()
	order.TotalAmount = order.UnitPrice * float64(order.Quantity)
	order.Status = models.OrderStatusPending
	order.Version = 1
	order.CreatedAt = now
	order.UpdatedAt = now

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		order.OrderID = orderid.Generate(order.ProductType)

		created, err := os.repo.CreateOrder(ctx, order)
		if err != nil {
			if errors.Is(err, models.ErrConflictData) {
				os.logger.Warn("order code collision, regenerating",
					zap.String("order", order.OrderID),
					zap.Int("attempt", attempt+1))
				continue
			}
			return nil, err
		}

		metrics.OrdersCreated.Inc()
		return created, nil
	}

	return nil, models.ErrOrderIDExhausted
}

// Get returns a single order by code
func (os *OrderService) Get(ctx context.Context, code string) (*models.Order, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: order code is required", models.ErrValidation)
	}
	return os.repo.GetOrderByCode(ctx, code)
}

// List returns orders matching the filter
func (os *OrderService) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	return os.repo.ListOrders(ctx, filter)
}

// SetStatus moves an order to a new status. Any status may follow any
// status, but backward moves along the fulfillment path are logged as
// anomalies. The caller supplies the version it read; a stale version is
// rejected with ErrVersionConflict so the operator re-reads and retries.
func (os *OrderService) SetStatus(ctx context.Context, code, status string, version int64) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: order code is required", models.ErrValidation)
	}
	if strings.TrimSpace(status) == "" {
		return fmt.Errorf("%w: status is required", models.ErrValidation)
	}
	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
	}

	order, err := os.repo.GetOrderByCode(ctx, code)
	if err != nil {
		return err
	}

	if models.IsBackwardTransition(order.Status, status) {
		os.logger.Warn("backward status transition",
			zap.String("order", code),
			zap.String("from", order.Status),
			zap.String("to", status))
	}

	// updated_at must move strictly forward even on a coarse clock
	now := os.now().UTC()
	if !now.After(order.UpdatedAt) {
		now = order.UpdatedAt.Add(time.Millisecond)
	}

	if err := os.repo.UpdateOrderStatus(ctx, code, status, now, version); err != nil {
		return err
	}

	metrics.StatusUpdates.WithLabelValues(status).Inc()
	return nil
}

// Delete removes an order permanently. There is no undo.
func (os *OrderService) Delete(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: order code is required", models.ErrValidation)
	}

	if err := os.repo.DeleteOrder(ctx, code); err != nil {
		return err
	}

	os.logger.Info("order deleted", zap.String("order", code))
	return nil
}
