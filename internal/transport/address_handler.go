package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AddressRequest struct {
	Label         string `json:"label" validate:"max=50"`
	RecipientName string `json:"recipient_name" validate:"required,max=100"`
	Phone         string `json:"phone" validate:"required,max=30"`
	Line1         string `json:"line1" validate:"required,max=200"`
	Line2         string `json:"line2" validate:"max=200"`
	City          string `json:"city" validate:"required,max=100"`
	State         string `json:"state" validate:"max=100"`
	PostalCode    string `json:"postal_code" validate:"required,max=20"`
	Country       string `json:"country" validate:"required,len=2"`
	IsDefault     bool   `json:"is_default"`
}

func (req AddressRequest) input() service.AddressInput {
	return service.AddressInput{
		Label:         req.Label,
		RecipientName: req.RecipientName,
		Phone:         req.Phone,
		Line1:         req.Line1,
		Line2:         req.Line2,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		IsDefault:     req.IsDefault,
	}
}

type AddressHandler struct {
	addresses service.AddressService
	logger    *zap.Logger
}

func NewAddressHandler(addresses service.AddressService, logger *zap.Logger) *AddressHandler {
	return &AddressHandler{addresses: addresses, logger: logger}
}

func (h *AddressHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/api/addresses", h.List)
		r.Post("/api/addresses", h.Create)
		r.Get("/api/addresses/{id}", h.Get)
		r.Put("/api/addresses/{id}", h.Update)
		r.Delete("/api/addresses/{id}", h.Delete)
	})
}

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	addresses, err := h.addresses.List(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to list addresses")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, addresses)
}

func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	address, err := h.addresses.Get(r.Context(), userID, id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to get address")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, address)
}

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req AddressRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	address, err := h.addresses.Create(r.Context(), userID, req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to create address")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, address)
}

func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req AddressRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	address, err := h.addresses.Update(r.Context(), userID, id, req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update address")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, address)
}

func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.addresses.Delete(r.Context(), userID, id); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to delete address")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
