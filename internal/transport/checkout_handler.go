package transport

import (
	"io"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxWebhookBody matches the limit the payment provider documents for events.
const maxWebhookBody = 64 << 10

type CheckoutRequest struct {
	AddressID uuid.UUID `json:"address_id" validate:"required"`
}

type CheckoutHandler struct {
	checkout service.CheckoutService
	logger   *zap.Logger
}

func NewCheckoutHandler(checkout service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

func (h *CheckoutHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/api/payments/webhook", h.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/checkout", h.Checkout)
		r.Post("/api/orders/{id}/pay", h.Pay)
	})
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CheckoutRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.checkout.Checkout(r.Context(), userID, req.AddressID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Checkout failed")
		return
	}
	h.logger.Info("Checkout started",
		zap.String("user_id", userID.String()),
		zap.String("order_id", result.Order.ID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, result)
}

// Pay opens a new payment session for a PENDING order.
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	result, err := h.checkout.Pay(r.Context(), userID, orderID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to open payment session")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

func (h *CheckoutHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	if err := h.checkout.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		respondWithServiceError(w, h.logger, err, "Webhook rejected")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}
