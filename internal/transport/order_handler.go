package transport

import (
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PAID SHIPPED COMPLETED CANCELED"`
}

type OrderHandler struct {
	orders service.OrderService
	logger *zap.Logger
}

func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/api/orders", h.ListMine)
		r.Get("/api/orders/{id}", h.GetMine)
		r.Post("/api/orders/{id}/cancel", h.CancelMine)
	})
}

func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/stats", h.Stats)
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Put("/orders/{id}/status", h.UpdateStatus)
}

func statusParam(r *http.Request) domain.OrderStatus {
	return domain.OrderStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, err := h.orders.ListForUser(r.Context(), userID, statusParam(r), pageRequest(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to list orders")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, page)
}

func (h *OrderHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetForUser(r.Context(), userID, orderID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to get order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) CancelMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	order, err := h.orders.CancelForUser(r.Context(), userID, orderID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to cancel order")
		return
	}
	h.logger.Info("Order canceled by customer", zap.String("order_id", orderID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// List serves the back office order table: ?status=&user_id=&page=&page_size=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.OrderFilter{Status: statusParam(r)}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &id
	}

	page, err := h.orders.List(r.Context(), filter, pageRequest(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to list orders")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, page)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to get order")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	order, err := h.orders.UpdateStatus(r.Context(), orderID, domain.OrderStatus(req.Status))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update order status")
		return
	}
	h.logger.Info("Order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("status", req.Status),
	)
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.Stats(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to load stats")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stats)
}
