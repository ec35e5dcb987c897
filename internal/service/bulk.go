package service

import (
	"context"
	"strings"

	"github.com/onedream/storefront/internal/models"
)

// OrderLifecycle is the slice of OrderService the bulk operator drives
type OrderLifecycle interface {
	// Get returns a single order by code
	Get(ctx context.Context, code string) (*models.Order, error)
	// SetStatus moves an order to a new status
	SetStatus(ctx context.Context, code, status string, version int64) error
	// Delete removes an order permanently
	Delete(ctx context.Context, code string) error
}

// BulkFailure is one order that could not be processed
type BulkFailure struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason"`
}

// BulkResult is the aggregate outcome of a bulk operation. Callers must
// inspect Failed rather than assume all-or-nothing.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// BulkService applies a status change or deletion to a set of orders,
// attempting every order regardless of earlier failures
type BulkService struct {
	orders OrderLifecycle
}

// NewBulkService creates new BulkService instance
func NewBulkService(orders OrderLifecycle) *BulkService {
	return &BulkService{orders: orders}
}

// cleanCodes filters out empty and whitespace-only codes. Dropped entries
// surface as a single pre-flight failure, distinct from per-order store
// failures.
func cleanCodes(codes []string) ([]string, *BulkFailure) {
	cleaned := make([]string, 0, len(codes))
	dropped := 0

	for _, code := range codes {
		if strings.TrimSpace(code) == "" {
			dropped++
			continue
		}
		cleaned = append(cleaned, code)
	}

	if dropped == 0 {
		return cleaned, nil
	}
	return cleaned, &BulkFailure{Reason: "empty order id in request"}
}

// ApplyStatus sets the status on every order in codes. Orders are attempted
// sequentially; a failure never short-circuits the rest.
func (bs *BulkService) ApplyStatus(ctx context.Context, codes []string, status string) BulkResult {
	result := BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}

	cleaned, preflight := cleanCodes(codes)
	if preflight != nil {
		result.Failed = append(result.Failed, *preflight)
	}

	for _, code := range cleaned {
		order, err := bs.orders.Get(ctx, code)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{OrderID: code, Reason: err.Error()})
			continue
		}

		if err := bs.orders.SetStatus(ctx, code, status, order.Version); err != nil {
			result.Failed = append(result.Failed, BulkFailure{OrderID: code, Reason: err.Error()})
			continue
		}

		result.Succeeded = append(result.Succeeded, code)
	}

	return result
}

// DeleteAll deletes every order in codes with the same partial-failure
// tolerance as ApplyStatus
func (bs *BulkService) DeleteAll(ctx context.Context, codes []string) BulkResult {
	result := BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}

	cleaned, preflight := cleanCodes(codes)
	if preflight != nil {
		result.Failed = append(result.Failed, *preflight)
	}

	for _, code := range cleaned {
		if err := bs.orders.Delete(ctx, code); err != nil {
			result.Failed = append(result.Failed, BulkFailure{OrderID: code, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, code)
	}

	return result
}
