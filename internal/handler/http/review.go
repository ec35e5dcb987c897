package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/onedream/storefront/internal/middleware"
	"github.com/onedream/storefront/internal/models"
)

// ReviewService gates and records product review prompts
type ReviewService interface {
	// NextPrompt returns the order to prompt about now, or nil
	NextPrompt(ctx context.Context, userID string) (*models.Order, error)
	// ClosePrompt signals that the open prompt was submitted or skipped
	ClosePrompt(userID, orderCode string) error
	// SubmitReview attaches the review payload to a completed order
	SubmitReview(ctx context.Context, userID, orderCode, payload string) error
	// HasUserReviewedProduct reports whether the user already reviewed the product
	HasUserReviewedProduct(ctx context.Context, userID, productName string) (bool, error)
}

// ReviewHandler represents HTTP handler for review-prompt requests
type ReviewHandler struct {
	svc ReviewService
}

// NewReviewHandler creates new ReviewHandler instance
func NewReviewHandler(svc ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// NextPrompt returns the order the user should be asked to review
// 200 — a prompt is due, body carries the order;
// 204 — nothing to prompt right now;
// 401 — no valid session.
func (rh *ReviewHandler) NextPrompt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.Payload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		order, err := rh.svc.NextPrompt(r.Context(), payload.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if order == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(order)
	}
}

// ClosePrompt marks the open prompt as closed so the queue can advance
func (rh *ReviewHandler) ClosePrompt() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.Payload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		code := chi.URLParam(r, "orderID")

		if err := rh.svc.ClosePrompt(payload.UserID, code); err != nil {
			writeServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type reviewStatusResponse struct {
	Reviewed bool `json:"reviewed"`
}

// ReviewStatus reports whether the user has already reviewed a product,
// across all of their orders for it
// 200 — body carries the reviewed flag;
// 400 — product query parameter is missing;
// 401 — no valid session.
func (rh *ReviewHandler) ReviewStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.Payload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		product := r.URL.Query().Get("product")
		if product == "" {
			http.Error(w, "product is required", http.StatusBadRequest)
			return
		}

		reviewed, err := rh.svc.HasUserReviewedProduct(r.Context(), payload.UserID, product)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reviewStatusResponse{Reviewed: reviewed})
	}
}

type submitReviewRequest struct {
	Review string `json:"review"`
}

// SubmitReview stores the serialized review on the order
func (rh *ReviewHandler) SubmitReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.Payload(r.Context())
		if !ok {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		code := chi.URLParam(r, "orderID")

		var req submitReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if err := rh.svc.SubmitReview(r.Context(), payload.UserID, code, req.Review); err != nil {
			writeServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
