package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/onedream/storefront/internal/models"
	"github.com/onedream/storefront/internal/repository/postgres"
)

const orderColumns = `id, order_code, user_id, user_name, user_email, product_type, product_name,
						product_image, item_label, quantity, unit_price, total_amount,
						player_id, zone_id, player_uuid, payment_method, payment_account_number,
						transaction_id, status, reviews, version, created_at, updated_at`

const (
	insertOrderQuery = `
						INSERT INTO orders (id, order_code, user_id, user_name, user_email,
							product_type, product_name, product_image, item_label,
							quantity, unit_price, total_amount,
							player_id, zone_id, player_uuid,
							payment_method, payment_account_number, transaction_id,
							status, version, created_at, updated_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
							$13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
`
	selectOrderByCodeQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE order_code = $1
`
	updateOrderStatusQuery = `
						UPDATE orders
						SET status = $1, updated_at = $2, version = version + 1
						WHERE order_code = $3 AND version = $4
`
	attachOrderReviewQuery = `
						UPDATE orders
						SET reviews = $1, updated_at = $2, version = version + 1
						WHERE order_code = $3
`
	deleteOrderQuery = `
						DELETE FROM orders WHERE order_code = $1
`
	orderExistsQuery = `
						SELECT 1 FROM orders WHERE order_code = $1
`
)

// OrderRepository is the Postgres adapter behind the order store interfaces
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// storeErr marks non-domain store failures as transient so callers can
// distinguish "retry later" from "you did something wrong"
func storeErr(err error) error {
	return fmt.Errorf("%w: %w", models.ErrTransientStore, err)
}

// CreateOrder inserts new order, assigning the store document id
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.NewString()

	_, err := or.db.Exec(ctx, insertOrderQuery,
		order.ID, order.OrderID, order.UserID, order.UserName, order.UserEmail,
		order.ProductType, order.ProductName, order.ProductImage, order.ItemLabel,
		order.Quantity, order.UnitPrice, order.TotalAmount,
		order.PlayerID, order.ZoneID, order.UUID,
		order.PaymentMethod, order.PaymentAccountNumber, order.TransactionID,
		order.Status, order.Version, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		if or.db.IsUniqueViolation(err) {
			return nil, models.ErrConflictData
		}
		return nil, storeErr(err)
	}

	return order, nil
}

// GetOrderByCode returns order by its human-readable code
func (or *OrderRepository) GetOrderByCode(ctx context.Context, code string) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, selectOrderByCodeQuery, code).Scan(
		&order.ID, &order.OrderID, &order.UserID, &order.UserName, &order.UserEmail,
		&order.ProductType, &order.ProductName, &order.ProductImage, &order.ItemLabel,
		&order.Quantity, &order.UnitPrice, &order.TotalAmount,
		&order.PlayerID, &order.ZoneID, &order.UUID,
		&order.PaymentMethod, &order.PaymentAccountNumber, &order.TransactionID,
		&order.Status, &order.Reviews, &order.Version, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if or.db.IsNoRows(err) {
			return nil, models.ErrOrderNotFound
		}
		return nil, storeErr(err)
	}

	return &order, nil
}

// ListOrders returns orders matching the filter
func (or *OrderRepository) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	var (
		where []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.UserID != "" {
		where = append(where, "user_id = "+arg(filter.UserID))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if filter.ProductName != "" {
		where = append(where, "product_name = "+arg(filter.ProductName))
	}
	if filter.HasReviews != nil {
		if *filter.HasReviews {
			where = append(where, "reviews IS NOT NULL")
		} else {
			where = append(where, "reviews IS NULL")
		}
	}

	query := "SELECT " + orderColumns + " FROM orders"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.Ascending {
		query += " ORDER BY created_at ASC, order_code ASC"
	} else {
		query += " ORDER BY created_at DESC, order_code DESC"
	}

	rows, err := or.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order := models.Order{}
		err = rows.Scan(
			&order.ID, &order.OrderID, &order.UserID, &order.UserName, &order.UserEmail,
			&order.ProductType, &order.ProductName, &order.ProductImage, &order.ItemLabel,
			&order.Quantity, &order.UnitPrice, &order.TotalAmount,
			&order.PlayerID, &order.ZoneID, &order.UUID,
			&order.PaymentMethod, &order.PaymentAccountNumber, &order.TransactionID,
			&order.Status, &order.Reviews, &order.Version, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			continue
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}

	return orders, nil
}

// UpdateOrderStatus updates only the status, updated_at and version fields.
// The update is guarded by the version the caller read; a concurrent edit
// surfaces as ErrVersionConflict.
func (or *OrderRepository) UpdateOrderStatus(ctx context.Context, code, status string, updatedAt time.Time, version int64) error {
	cmd, err := or.db.Exec(ctx, updateOrderStatusQuery, status, updatedAt, code, version)
	if err != nil {
		return storeErr(err)
	}

	if cmd.RowsAffected() == 0 {
		// distinguish a missing order from a stale version
		var one int
		err := or.db.QueryRow(ctx, orderExistsQuery, code).Scan(&one)
		if err != nil {
			if or.db.IsNoRows(err) {
				return models.ErrOrderNotFound
			}
			return storeErr(err)
		}
		return models.ErrVersionConflict
	}

	return nil
}

// AttachOrderReview stores the serialized review payload on the order
func (or *OrderRepository) AttachOrderReview(ctx context.Context, code, payload string, updatedAt time.Time) error {
	cmd, err := or.db.Exec(ctx, attachOrderReviewQuery, payload, updatedAt, code)
	if err != nil {
		return storeErr(err)
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrOrderNotFound
	}

	return nil
}

// DeleteOrder removes the order permanently
func (or *OrderRepository) DeleteOrder(ctx context.Context, code string) error {
	cmd, err := or.db.Exec(ctx, deleteOrderQuery, code)
	if err != nil {
		return storeErr(err)
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrOrderNotFound
	}

	return nil
}
