package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/onedream/storefront/internal/models"
	"go.uber.org/zap"
)

// DefaultPromptDebounce is the pause between closing one review prompt and
// offering the next
const DefaultPromptDebounce = 3 * time.Second

// ReviewOrderRepository is the slice of the order store the review gate reads
type ReviewOrderRepository interface {
	// GetOrderByCode returns order by its human-readable code
	GetOrderByCode(ctx context.Context, code string) (*models.Order, error)
	// ListOrders returns orders matching the filter
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	// AttachOrderReview stores the serialized review payload on the order
	AttachOrderReview(ctx context.Context, code, payload string, updatedAt time.Time) error
}

// PromptRepository durably records which orders have already been prompted
type PromptRepository interface {
	// MarkPromptShown records that the prompt for an order was presented
	MarkPromptShown(ctx context.Context, orderCode, userID string, shownAt time.Time) error
	// PromptedOrderCodes returns codes already prompted for the user
	PromptedOrderCodes(ctx context.Context, userID string) (map[string]struct{}, error)
}

// promptSlot is the per-user single-flight prompt state. pending marks a
// dequeue in flight, so concurrent NextPrompt calls cannot each pull an
// eligible order and mark one that is never presented.
type promptSlot struct {
	current  string
	pending  bool
	closedAt time.Time
}

// ReviewGate prompts a customer to review a completed order at most once
// per order, one prompt at a time. "Shown" is persisted before the user
// responds: dismissing without reviewing never re-prompts for that order.
type ReviewGate struct {
	orders   ReviewOrderRepository
	prompts  PromptRepository
	logger   *zap.Logger
	debounce time.Duration
	now      func() time.Time

	mu    sync.Mutex
	slots map[string]*promptSlot
}

// NewReviewGate creates new ReviewGate instance
func NewReviewGate(orders ReviewOrderRepository, prompts PromptRepository, logger *zap.Logger) *ReviewGate {
	return &ReviewGate{
		orders:   orders,
		prompts:  prompts,
		logger:   logger,
		debounce: DefaultPromptDebounce,
		now:      time.Now,
		slots:    map[string]*promptSlot{},
	}
}

// FindEligible returns the user's completed orders that have never been
// prompted, oldest first, giving a stable prompt sequence
func (rg *ReviewGate) FindEligible(ctx context.Context, userID string) ([]models.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", models.ErrValidation)
	}

	orders, err := rg.orders.ListOrders(ctx, models.OrderFilter{
		UserID:    userID,
		Status:    models.OrderStatusCompleted,
		Ascending: true,
	})
	if err != nil {
		return nil, err
	}

	prompted, err := rg.prompts.PromptedOrderCodes(ctx, userID)
	if err != nil {
		return nil, err
	}

	eligible := []models.Order{}
	for _, order := range orders {
		if _, ok := prompted[order.OrderID]; ok {
			continue
		}
		eligible = append(eligible, order)
	}

	return eligible, nil
}

// NextPrompt returns the order the user should be prompted about now, or
// nil when there is nothing to show. The returned order is recorded as
// shown immediately. While a prompt is open, or the post-close debounce has
// not elapsed, NextPrompt returns the open prompt or nil rather than
// advancing the queue.
func (rg *ReviewGate) NextPrompt(ctx context.Context, userID string) (*models.Order, error) {
	rg.mu.Lock()
	slot, ok := rg.slots[userID]
	if !ok {
		slot = &promptSlot{}
		rg.slots[userID] = slot
	}

	if slot.current != "" {
		current := slot.current
		rg.mu.Unlock()
		return rg.orders.GetOrderByCode(ctx, current)
	}
	if slot.pending {
		// another request is already dequeuing for this user
		rg.mu.Unlock()
		return nil, nil
	}
	if !slot.closedAt.IsZero() && rg.now().Sub(slot.closedAt) < rg.debounce {
		rg.mu.Unlock()
		return nil, nil
	}
	slot.pending = true
	rg.mu.Unlock()

	eligible, err := rg.FindEligible(ctx, userID)
	if err != nil || len(eligible) == 0 {
		rg.mu.Lock()
		slot.pending = false
		rg.mu.Unlock()
		return nil, err
	}

	next := eligible[0]

	// the slot is claimed before the shown record is written, so only the
	// order actually presented is ever marked
	rg.mu.Lock()
	slot.pending = false
	slot.current = next.OrderID
	rg.mu.Unlock()

	if err := rg.prompts.MarkPromptShown(ctx, next.OrderID, userID, rg.now().UTC()); err != nil {
		rg.mu.Lock()
		slot.current = ""
		rg.mu.Unlock()
		return nil, err
	}

	rg.logger.Debug("review prompt shown",
		zap.String("user", userID),
		zap.String("order", next.OrderID))

	return &next, nil
}

// ClosePrompt signals that the open prompt was submitted or skipped. The
// queue advances only through this call, after the debounce delay.
func (rg *ReviewGate) ClosePrompt(userID, orderCode string) error {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	slot, ok := rg.slots[userID]
	if !ok || slot.current == "" {
		return fmt.Errorf("%w: no open prompt", models.ErrValidation)
	}
	if slot.current != orderCode {
		return fmt.Errorf("%w: prompt %s is not open", models.ErrValidation, orderCode)
	}

	slot.current = ""
	slot.closedAt = rg.now()
	return nil
}

// HasUserReviewedProduct reports whether any of the user's orders for the
// product carries a review payload. Prompt bookkeeping is tracked
// separately: "prompted" and "reviewed" are different facts.
func (rg *ReviewGate) HasUserReviewedProduct(ctx context.Context, userID, productName string) (bool, error) {
	hasReviews := true
	orders, err := rg.orders.ListOrders(ctx, models.OrderFilter{
		UserID:      userID,
		ProductName: productName,
		HasReviews:  &hasReviews,
	})
	if err != nil {
		return false, err
	}
	return len(orders) > 0, nil
}

// SubmitReview attaches the serialized review payload to a completed order
// owned by the user
func (rg *ReviewGate) SubmitReview(ctx context.Context, userID, orderCode, payload string) error {
	if strings.TrimSpace(payload) == "" {
		return fmt.Errorf("%w: review payload is required", models.ErrValidation)
	}

	order, err := rg.orders.GetOrderByCode(ctx, orderCode)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return models.ErrOrderNotFound
	}
	if order.Status != models.OrderStatusCompleted {
		return fmt.Errorf("%w: only completed orders can be reviewed", models.ErrValidation)
	}

	return rg.orders.AttachOrderReview(ctx, orderCode, payload, rg.now().UTC())
}
