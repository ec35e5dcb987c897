package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/onedream/storefront/internal/models"
	"github.com/onedream/storefront/internal/service"
)

// AdminOrderService is the lifecycle surface operators drive
type AdminOrderService interface {
	// List returns orders matching the filter
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	// SetStatus moves an order to a new status
	SetStatus(ctx context.Context, code, status string, version int64) error
	// Delete removes an order permanently
	Delete(ctx context.Context, code string) error
}

// BulkOrderService applies status changes and deletions to sets of orders
type BulkOrderService interface {
	// ApplyStatus sets the status on every order in codes
	ApplyStatus(ctx context.Context, codes []string, status string) service.BulkResult
	// DeleteAll deletes every order in codes
	DeleteAll(ctx context.Context, codes []string) service.BulkResult
}

// AdminHandler represents HTTP handler for operator requests
type AdminHandler struct {
	svc  AdminOrderService
	bulk BulkOrderService
}

// NewAdminHandler creates new AdminHandler instance
func NewAdminHandler(svc AdminOrderService, bulk BulkOrderService) *AdminHandler {
	return &AdminHandler{svc: svc, bulk: bulk}
}

// ListOrders returns all orders, optionally filtered by ?status=
func (ah *AdminHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := models.OrderFilter{}

		if status := r.URL.Query().Get("status"); status != "" {
			if !models.ValidOrderStatus(status) {
				http.Error(w, "unknown status", http.StatusBadRequest)
				return
			}
			filter.Status = status
		}

		orders, err := ah.svc.List(r.Context(), filter)
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

type setStatusRequest struct {
	Status string `json:"status"`
	// Version is the order version the operator read. A stale version is
	// rejected with 409 so the operator re-reads and retries.
	Version int64 `json:"version"`
}

// SetStatus moves one order to a new status
// 204 — status updated;
// 400 — unknown status or empty order code;
// 404 — no such order;
// 409 — the order changed since the operator read it.
func (ah *AdminHandler) SetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "orderID")

		var req setStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := ah.svc.SetStatus(r.Context(), code, req.Status, req.Version); err != nil {
			writeServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteOrder removes one order permanently
func (ah *AdminHandler) DeleteOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "orderID")

		if err := ah.svc.Delete(r.Context(), code); err != nil {
			writeServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type bulkStatusRequest struct {
	OrderIDs []string `json:"orderIds"`
	Status   string   `json:"status"`
}

// BulkSetStatus applies a status to a set of orders. The response is an
// aggregate: callers must inspect failed rather than assume all-or-nothing.
func (ah *AdminHandler) BulkSetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if len(req.OrderIDs) == 0 {
			http.Error(w, "orderIds is empty", http.StatusBadRequest)
			return
		}
		if !models.ValidOrderStatus(req.Status) {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}

		result := ah.bulk.ApplyStatus(r.Context(), req.OrderIDs, req.Status)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

type bulkDeleteRequest struct {
	OrderIDs []string `json:"orderIds"`
}

// BulkDelete deletes a set of orders with the same aggregate response shape
func (ah *AdminHandler) BulkDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkDeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if len(req.OrderIDs) == 0 {
			http.Error(w, "orderIds is empty", http.StatusBadRequest)
			return
		}

		result := ah.bulk.DeleteAll(r.Context(), req.OrderIDs)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
