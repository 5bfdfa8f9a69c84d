package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type ReviewHandler struct {
	reviews service.ReviewService
	logger  *zap.Logger
}

func NewReviewHandler(reviews service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

func (h *ReviewHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/api/products/{id}/reviews", h.List)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/products/{id}/reviews", h.Submit)
		r.Delete("/api/products/{id}/reviews", h.DeleteOwn)
	})
}

func (h *ReviewHandler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/reviews/{id}", h.Delete)
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	page, err := h.reviews.List(r.Context(), productID, pageRequest(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to list reviews")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// Submit creates the caller's review or replaces the previous one.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	review, err := h.reviews.Submit(r.Context(), userID, productID, req.Rating, req.Comment)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to submit review")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) DeleteOwn(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.reviews.DeleteOwn(r.Context(), userID, productID); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to delete review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.reviews.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to delete review")
		return
	}
	h.logger.Info("Review removed by admin", zap.String("review_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
