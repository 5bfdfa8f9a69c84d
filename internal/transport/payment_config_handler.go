package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentConfigRequest struct {
	Currency              string  `json:"currency" validate:"required,len=3"`
	TaxRate               float64 `json:"tax_rate" validate:"gte=0,lte=1"`
	ShippingFee           float64 `json:"shipping_fee" validate:"gte=0"`
	FreeShippingThreshold float64 `json:"free_shipping_threshold" validate:"gte=0"`
	Enabled               bool    `json:"enabled"`
}

type PaymentConfigHandler struct {
	configs service.PaymentConfigService
	logger  *zap.Logger
}

func NewPaymentConfigHandler(configs service.PaymentConfigService, logger *zap.Logger) *PaymentConfigHandler {
	return &PaymentConfigHandler{configs: configs, logger: logger}
}

func (h *PaymentConfigHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/payment-config", h.Get)
	r.Put("/payment-config", h.Update)
}

func (h *PaymentConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.Get(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to load payment config")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cfg)
}

func (h *PaymentConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req PaymentConfigRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	cfg, err := h.configs.Update(r.Context(), service.PaymentConfigInput{
		Currency:              req.Currency,
		TaxRate:               req.TaxRate,
		ShippingFee:           req.ShippingFee,
		FreeShippingThreshold: req.FreeShippingThreshold,
		Enabled:               req.Enabled,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update payment config")
		return
	}
	h.logger.Info("Payment config updated",
		zap.String("currency", cfg.Currency),
		zap.Bool("enabled", cfg.Enabled),
	)
	middleware.RespondWithJSON(w, http.StatusOK, cfg)
}
