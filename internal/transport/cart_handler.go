package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1,lte=99"`
}

// SetQuantityRequest allows 0, which removes the line.
type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=99"`
}

type CartHandler struct {
	carts  service.CartService
	logger *zap.Logger
}

func NewCartHandler(carts service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/api/cart", h.Get)
		r.Delete("/api/cart", h.Clear)
		r.Post("/api/cart/items", h.AddItem)
		r.Put("/api/cart/items/{productId}", h.SetQuantity)
		r.Delete("/api/cart/items/{productId}", h.RemoveItem)
	})
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	cart, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to load cart")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	cart, err := h.carts.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to add cart item")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := uuidParam(w, r, "productId")
	if !ok {
		return
	}
	var req SetQuantityRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	cart, err := h.carts.SetQuantity(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update cart item")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := uuidParam(w, r, "productId")
	if !ok {
		return
	}
	cart, err := h.carts.RemoveItem(r.Context(), userID, productID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to remove cart item")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.carts.Clear(r.Context(), userID); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
