package service

import (
	"context"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/onedream/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeOrderRepo is an in-memory stand-in for the Postgres order repository,
// shared by the service tests in this package
type fakeOrderRepo struct {
	mu            sync.Mutex
	orders        map[string]*models.Order
	conflictsLeft int
	listErr       error
	deleteErr     map[string]error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:    map[string]*models.Order{},
		deleteErr: map[string]error{},
	}
}

func (f *fakeOrderRepo) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return nil, models.ErrConflictData
	}
	if _, ok := f.orders[order.OrderID]; ok {
		return nil, models.ErrConflictData
	}

	order.ID = "doc-" + order.OrderID
	stored := *order
	f.orders[order.OrderID] = &stored
	return order, nil
}

func (f *fakeOrderRepo) GetOrderByCode(_ context.Context, code string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[code]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *fakeOrderRepo) ListOrders(_ context.Context, filter models.OrderFilter) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	orders := []models.Order{}
	for _, order := range f.orders {
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.ProductName != "" && order.ProductName != filter.ProductName {
			continue
		}
		if filter.HasReviews != nil && *filter.HasReviews != (order.Reviews != nil) {
			continue
		}
		orders = append(orders, *order)
	}

	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			if filter.Ascending {
				return orders[i].CreatedAt.Before(orders[j].CreatedAt)
			}
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		if filter.Ascending {
			return orders[i].OrderID < orders[j].OrderID
		}
		return orders[i].OrderID > orders[j].OrderID
	})

	return orders, nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(_ context.Context, code, status string, updatedAt time.Time, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[code]
	if !ok {
		return models.ErrOrderNotFound
	}
	if order.Version != version {
		return models.ErrVersionConflict
	}

	order.Status = status
	order.UpdatedAt = updatedAt
	order.Version++
	return nil
}

func (f *fakeOrderRepo) AttachOrderReview(_ context.Context, code, payload string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[code]
	if !ok {
		return models.ErrOrderNotFound
	}

	order.Reviews = &payload
	order.UpdatedAt = updatedAt
	order.Version++
	return nil
}

func (f *fakeOrderRepo) DeleteOrder(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.deleteErr[code]; ok {
		return err
	}
	if _, ok := f.orders[code]; !ok {
		return models.ErrOrderNotFound
	}

	delete(f.orders, code)
	return nil
}

func validCheckout() *models.Order {
	return &models.Order{
		UserID:      "user-1",
		UserName:    "Rizky",
		UserEmail:   "rizky@example.com",
		ProductType: "Mobile Games",
		ProductName: "Mobile Legends",
		ItemLabel:   "86 Diamonds",
		Quantity:    3,
		UnitPrice:   100,
	}
}

func TestOrderService_Create(t *testing.T) {
	codeFormat := regexp.MustCompile(`^1DSMG[0-9A-Z]{2}$`)

	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, zap.NewNop())

	created, err := svc.Create(context.Background(), validCheckout())
	require.NoError(t, err)

	assert.Equal(t, float64(300), created.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, created.Status)
	assert.Equal(t, int64(1), created.Version)
	assert.True(t, codeFormat.MatchString(created.OrderID), "order code %q", created.OrderID)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	stored, err := repo.GetOrderByCode(context.Background(), created.OrderID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, stored); diff != "" {
		t.Errorf("stored order mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *models.Order)
	}{
		{
			name:   "missing_user_id",
			mutate: func(o *models.Order) { o.UserID = "" },
		},
		{
			name:   "missing_user_name",
			mutate: func(o *models.Order) { o.UserName = "  " },
		},
		{
			name:   "missing_user_email",
			mutate: func(o *models.Order) { o.UserEmail = "" },
		},
		{
			name:   "missing_product_type",
			mutate: func(o *models.Order) { o.ProductType = "" },
		},
		{
			name:   "missing_product_name",
			mutate: func(o *models.Order) { o.ProductName = "" },
		},
		{
			name:   "zero_quantity",
			mutate: func(o *models.Order) { o.Quantity = 0 },
		},
		{
			name:   "negative_unit_price",
			mutate: func(o *models.Order) { o.UnitPrice = -1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeOrderRepo()
			svc := NewOrderService(repo, zap.NewNop())

			order := validCheckout()
			tt.mutate(order)

			_, err := svc.Create(context.Background(), order)
			assert.ErrorIs(t, err, models.ErrValidation)
			assert.Empty(t, repo.orders, "invalid order must never be persisted")
		})
	}
}

func TestOrderService_Create_CodeCollisionRetries(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.conflictsLeft = 2
	svc := NewOrderService(repo, zap.NewNop())

	created, err := svc.Create(context.Background(), validCheckout())
	require.NoError(t, err)
	assert.NotEmpty(t, created.OrderID)
}

func TestOrderService_Create_CodeExhaustion(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.conflictsLeft = maxCodeAttempts
	svc := NewOrderService(repo, zap.NewNop())

	_, err := svc.Create(context.Background(), validCheckout())
	assert.ErrorIs(t, err, models.ErrOrderIDExhausted)
}

func TestOrderService_SetStatus(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, zap.NewNop())

	created, err := svc.Create(context.Background(), validCheckout())
	require.NoError(t, err)
	code := created.OrderID

	// Pending -> Processing -> Completed with strictly increasing updated_at
	require.NoError(t, svc.SetStatus(context.Background(), code, models.OrderStatusProcessing, 1))
	afterProcessing, err := repo.GetOrderByCode(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, afterProcessing.Status)
	assert.True(t, afterProcessing.UpdatedAt.After(created.UpdatedAt))

	require.NoError(t, svc.SetStatus(context.Background(), code, models.OrderStatusCompleted, 2))
	afterCompleted, err := repo.GetOrderByCode(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, afterCompleted.Status)
	assert.True(t, afterCompleted.UpdatedAt.After(afterProcessing.UpdatedAt))
}

func TestOrderService_SetStatus_Errors(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, zap.NewNop())

	created, err := svc.Create(context.Background(), validCheckout())
	require.NoError(t, err)

	tests := []struct {
		name    string
		code    string
		status  string
		version int64
		wantErr error
	}{
		{
			name:    "unknown_order",
			code:    "1DSMG00",
			status:  models.OrderStatusProcessing,
			version: 1,
			wantErr: models.ErrOrderNotFound,
		},
		{
			name:    "empty_order_code",
			code:    " ",
			status:  models.OrderStatusProcessing,
			version: 1,
			wantErr: models.ErrValidation,
		},
		{
			name:    "empty_status",
			code:    created.OrderID,
			status:  "",
			version: 1,
			wantErr: models.ErrValidation,
		},
		{
			name:    "unknown_status",
			code:    created.OrderID,
			status:  "Shipped",
			version: 1,
			wantErr: models.ErrValidation,
		},
		{
			name:    "stale_version",
			code:    created.OrderID,
			status:  models.OrderStatusProcessing,
			version: 42,
			wantErr: models.ErrVersionConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SetStatus(context.Background(), tt.code, tt.status, tt.version)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOrderService_SetStatus_BackwardTransitionAllowed(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, zap.NewNop())

	created, err := svc.Create(context.Background(), validCheckout())
	require.NoError(t, err)
	code := created.OrderID

	require.NoError(t, svc.SetStatus(context.Background(), code, models.OrderStatusCompleted, 1))
	// backward move is flagged in the log but never blocked
	require.NoError(t, svc.SetStatus(context.Background(), code, models.OrderStatusPending, 2))

	order, err := repo.GetOrderByCode(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestOrderService_Delete(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, zap.NewNop())

	created, err := svc.Create(context.Background(), validCheckout())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.OrderID))
	_, err = repo.GetOrderByCode(context.Background(), created.OrderID)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), created.OrderID), models.ErrOrderNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), ""), models.ErrValidation)
}
