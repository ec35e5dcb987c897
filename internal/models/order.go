package models

import "time"

// order status
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusCompleted  = "Completed"
	OrderStatusCancelled  = "Cancelled"
)

// ValidOrderStatus reports whether s is one of the four order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// statusRank orders the statuses along the normal fulfillment path.
// Cancelled sits at the end: leaving it is as anomalous as leaving Completed.
var statusRank = map[string]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusCompleted:  2,
	OrderStatusCancelled:  2,
}

// IsBackwardTransition reports whether moving from prev to next walks the
// fulfillment path backwards (e.g. Completed -> Pending). Backward moves are
// allowed but flagged for observability.
func IsBackwardTransition(prev, next string) bool {
	return statusRank[next] < statusRank[prev]
}

// Order is order entity
type Order struct {
	ID                   string    `json:"id"`
	OrderID              string    `json:"orderID"`
	UserID               string    `json:"userId"`
	UserName             string    `json:"userName"`
	UserEmail            string    `json:"userEmail"`
	ProductType          string    `json:"productType"`
	ProductName          string    `json:"productName"`
	ProductImage         string    `json:"productImage,omitempty"`
	ItemLabel            string    `json:"itemLabel,omitempty"`
	Quantity             int       `json:"quantity"`
	UnitPrice            float64   `json:"unitPrice"`
	TotalAmount          float64   `json:"totalAmount"`
	PlayerID             string    `json:"playerId,omitempty"`
	ZoneID               string    `json:"zoneId,omitempty"`
	UUID                 string    `json:"uuid,omitempty"`
	PaymentMethod        string    `json:"paymentMethod,omitempty"`
	PaymentAccountNumber string    `json:"paymentAccountNumber,omitempty"`
	TransactionID        string    `json:"transactionId,omitempty"`
	Status               string    `json:"status"`
	Reviews              *string   `json:"reviews,omitempty"`
	Version              int64     `json:"version"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// OrderFilter narrows ListOrders. Zero values mean "no restriction".
type OrderFilter struct {
	UserID      string
	Status      string
	ProductName string
	// HasReviews filters on the reviews payload being present (true) or
	// absent (false) when set.
	HasReviews *bool
	// Ascending orders by created_at ascending instead of the default
	// descending.
	Ascending bool
}

// WatcherCursor is the durable high-water mark of the notification watcher.
type WatcherCursor struct {
	LastCreatedAt time.Time
	LastOrderID   string
}
