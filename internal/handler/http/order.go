package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/onedream/storefront/internal/middleware"
	"github.com/onedream/storefront/internal/models"
	"github.com/onedream/storefront/internal/sla"
)

// OrderService is the order lifecycle surface the user-facing handlers need
type OrderService interface {
	// Create validates the checkout request and persists the order
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	// Get returns a single order by code
	Get(ctx context.Context, code string) (*models.Order, error)
	// List returns orders matching the filter
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
}

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderRequest struct {
	UserEmail            string  `json:"userEmail"`
	ProductType          string  `json:"productType"`
	ProductName          string  `json:"productName"`
	ProductImage         string  `json:"productImage"`
	ItemLabel            string  `json:"itemLabel"`
	Quantity             int     `json:"quantity"`
	UnitPrice            float64 `json:"unitPrice"`
	PlayerID             string  `json:"playerId"`
	ZoneID               string  `json:"zoneId"`
	UUID                 string  `json:"uuid"`
	PaymentMethod        string  `json:"paymentMethod"`
	PaymentAccountNumber string  `json:"paymentAccountNumber"`
	TransactionID        string  `json:"transactionId"`
}

// orderResponse is an order plus its delivery countdown state
type orderResponse struct {
	models.Order
	SLA sla.State `json:"sla"`
}

func toOrderResponse(order models.Order, now time.Time) orderResponse {
	return orderResponse{
		Order: order,
		SLA:   sla.Evaluate(order.CreatedAt, order.Status, now),
	}
}

// writeServiceError maps service errors onto HTTP status codes
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrOrderNotFound):
		http.Error(w, "order not found", http.StatusNotFound)
	case errors.Is(err, models.ErrVersionConflict):
		http.Error(w, "order was modified, re-read and retry", http.StatusConflict)
	case errors.Is(err, models.ErrTransientStore):
		http.Error(w, "store unavailable, try again", http.StatusServiceUnavailable)
	case errors.Is(err, models.ErrConfiguration):
		http.Error(w, "service misconfigured", http.StatusInternalServerError)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// CreateOrder places an order for the authenticated user
// 201 — order created;
// 400 — malformed request or missing commerce fields;
// 401 — no valid session;
// 503 — store unavailable.
func (oh *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.Payload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order := models.Order{
			UserID:               payload.UserID,
			UserName:             payload.UserName,
			UserEmail:            req.UserEmail,
			ProductType:          req.ProductType,
			ProductName:          req.ProductName,
			ProductImage:         req.ProductImage,
			ItemLabel:            req.ItemLabel,
			Quantity:             req.Quantity,
			UnitPrice:            req.UnitPrice,
			PlayerID:             req.PlayerID,
			ZoneID:               req.ZoneID,
			UUID:                 req.UUID,
			PaymentMethod:        req.PaymentMethod,
			PaymentAccountNumber: req.PaymentAccountNumber,
			TransactionID:        req.TransactionID,
		}

		created, err := oh.svc.Create(r.Context(), &order)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(toOrderResponse(*created, time.Now()))
	}
}

// ListUserOrders returns the authenticated user's orders, newest first,
// each with its delivery countdown state
func (oh *OrderHandler) ListUserOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.Payload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		orders, err := oh.svc.List(r.Context(), models.OrderFilter{UserID: payload.UserID})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		now := time.Now()
		resp := make([]orderResponse, 0, len(orders))
		for _, order := range orders {
			resp = append(resp, toOrderResponse(order, now))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// GetOrder returns one of the authenticated user's orders by code.
// Operators may fetch any order.
func (oh *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.Payload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		code := chi.URLParam(r, "orderID")

		order, err := oh.svc.Get(r.Context(), code)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if payload.Role != models.RoleOperator && order.UserID != payload.UserID {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(toOrderResponse(*order, time.Now()))
	}
}
