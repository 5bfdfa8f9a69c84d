package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BannerRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	ImageURL string `json:"image_url" validate:"required,max=2048"`
	LinkURL  string `json:"link_url" validate:"omitempty,max=2048"`
	IsActive *bool  `json:"is_active"`
}

func (req BannerRequest) input() service.BannerInput {
	return service.BannerInput{
		Title:    req.Title,
		ImageURL: req.ImageURL,
		LinkURL:  req.LinkURL,
		IsActive: req.IsActive,
	}
}

type CarouselItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

// ContentHandler serves the home page banners and the featured product
// carousel.
type ContentHandler struct {
	banners  service.BannerService
	carousel service.CarouselService
	logger   *zap.Logger
}

func NewContentHandler(banners service.BannerService, carousel service.CarouselService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{banners: banners, carousel: carousel, logger: logger}
}

func (h *ContentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/banners", h.ListActiveBanners)
	r.Get("/api/carousel", h.ListCarousel)
}

func (h *ContentHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/banners", h.ListBanners)
	r.Post("/banners", h.CreateBanner)
	r.Put("/banners/order", h.ReorderBanners)
	r.Put("/banners/{id}", h.UpdateBanner)
	r.Delete("/banners/{id}", h.DeleteBanner)
	r.Patch("/banners/{id}/active", h.ToggleBanner)

	r.Get("/carousel", h.ListCarouselAll)
	r.Post("/carousel", h.AddCarouselItem)
	r.Put("/carousel/order", h.ReorderCarousel)
	r.Delete("/carousel/{id}", h.RemoveCarouselItem)
}

func (h *ContentHandler) ListActiveBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.banners.ListActive(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to list banners")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, banners)
}

func (h *ContentHandler) ListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.banners.ListAll(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to list banners")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, banners)
}

func (h *ContentHandler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var req BannerRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	banner, err := h.banners.Create(r.Context(), req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to create banner")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, banner)
}

func (h *ContentHandler) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req BannerRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	banner, err := h.banners.Update(r.Context(), id, req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update banner")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, banner)
}

func (h *ContentHandler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.banners.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to delete banner")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) ToggleBanner(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	banner, err := h.banners.ToggleActive(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to toggle banner")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, banner)
}

func (h *ContentHandler) ReorderBanners(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	banners, err := h.banners.Reorder(r.Context(), req.IDs)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to reorder banners")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, banners)
}

func (h *ContentHandler) ListCarousel(w http.ResponseWriter, r *http.Request) {
	items, err := h.carousel.ListPublic(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to list carousel")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}

func (h *ContentHandler) ListCarouselAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.carousel.ListAll(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to list carousel")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}

func (h *ContentHandler) AddCarouselItem(w http.ResponseWriter, r *http.Request) {
	var req CarouselItemRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	item, err := h.carousel.Add(r.Context(), req.ProductID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to add carousel item")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

func (h *ContentHandler) RemoveCarouselItem(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.carousel.Remove(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to remove carousel item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) ReorderCarousel(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	items, err := h.carousel.Reorder(r.Context(), req.IDs)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to reorder carousel")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, items)
}
