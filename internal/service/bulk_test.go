package service

import (
	"context"
	"testing"

	"github.com/onedream/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedOrders(t *testing.T, svc *OrderService, n int) []string {
	t.Helper()

	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		order := validCheckout()
		created, err := svc.Create(context.Background(), order)
		require.NoError(t, err)
		codes = append(codes, created.OrderID)
	}
	return codes
}

func TestBulkService_ApplyStatus_AttemptsEveryOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	orderSvc := NewOrderService(repo, zap.NewNop())
	bulk := NewBulkService(orderSvc)

	codes := seedOrders(t, orderSvc, 2)
	// B does not exist; A and C must still both be attempted
	ids := []string{codes[0], "1DSMG__", codes[1]}

	result := bulk.ApplyStatus(context.Background(), ids, models.OrderStatusProcessing)

	assert.Equal(t, []string{codes[0], codes[1]}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "1DSMG__", result.Failed[0].OrderID)

	for _, code := range codes {
		order, err := repo.GetOrderByCode(context.Background(), code)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusProcessing, order.Status)
	}
}

func TestBulkService_ApplyStatus_FiltersBlankIDs(t *testing.T) {
	repo := newFakeOrderRepo()
	orderSvc := NewOrderService(repo, zap.NewNop())
	bulk := NewBulkService(orderSvc)

	codes := seedOrders(t, orderSvc, 1)

	result := bulk.ApplyStatus(context.Background(), []string{"", "   ", codes[0]}, models.OrderStatusCancelled)

	assert.Equal(t, []string{codes[0]}, result.Succeeded)
	// the blank entries collapse into a single pre-flight failure
	require.Len(t, result.Failed, 1)
	assert.Empty(t, result.Failed[0].OrderID)
}

func TestBulkService_ApplyStatus_AllBlank(t *testing.T) {
	repo := newFakeOrderRepo()
	orderSvc := NewOrderService(repo, zap.NewNop())
	bulk := NewBulkService(orderSvc)

	result := bulk.ApplyStatus(context.Background(), []string{"", " "}, models.OrderStatusCancelled)

	assert.Empty(t, result.Succeeded)
	require.Len(t, result.Failed, 1)
}

func TestBulkService_DeleteAll(t *testing.T) {
	repo := newFakeOrderRepo()
	orderSvc := NewOrderService(repo, zap.NewNop())
	bulk := NewBulkService(orderSvc)

	codes := seedOrders(t, orderSvc, 3)
	repo.deleteErr[codes[1]] = models.ErrTransientStore

	result := bulk.DeleteAll(context.Background(), codes)

	assert.Equal(t, []string{codes[0], codes[2]}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, codes[1], result.Failed[0].OrderID)

	// the failed order is untouched
	_, err := repo.GetOrderByCode(context.Background(), codes[1])
	assert.NoError(t, err)
}
