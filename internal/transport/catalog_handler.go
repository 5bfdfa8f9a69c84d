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

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type ProductRequest struct {
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	Price       float64   `json:"price" validate:"gte=0"`
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	ImageURL    string    `json:"image_url" validate:"omitempty,max=2048"`
	Stock       int       `json:"stock" validate:"gte=0"`
	IsActive    *bool     `json:"is_active"`
}

func (req ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	}
}

var productSortFields = map[string]bool{"name": true, "price": true, "created_at": true, "stock": true}

// CatalogHandler serves categories and products.
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

func NewCatalogHandler(catalog service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/products", h.ListProducts)
	r.Get("/api/products/{id}", h.GetProduct)
}

func (h *CatalogHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Put("/categories/{id}", h.UpdateCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)

	r.Get("/products", h.AdminListProducts)
	r.Get("/products/{id}", h.AdminGetProduct)
	r.Post("/products", h.CreateProduct)
	r.Put("/products/{id}", h.UpdateProduct)
	r.Delete("/products/{id}", h.DeleteProduct)
	r.Patch("/products/{id}/active", h.ToggleProductActive)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to list categories")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	category, err := h.catalog.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to create category")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	category, err := h.catalog.UpdateCategory(r.Context(), id, req.Name, req.Description)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update category")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListProducts serves the storefront listing:
// ?category_id=&q=&sort_by=name|price|created_at|stock&order=asc|desc&page=&page_size=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.listProducts(w, r, false)
}

func (h *CatalogHandler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	h.listProducts(w, r, true)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request, includeInactive bool) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		Query:           strings.TrimSpace(q.Get("q")),
		SortBy:          q.Get("sort_by"),
		SortOrder:       q.Get("order"),
		IncludeInactive: includeInactive,
	}
	if filter.SortBy != "" && !productSortFields[filter.SortBy] {
		middleware.RespondWithError(w, http.StatusBadRequest, "sort_by must be one of name, price, created_at, stock")
		return
	}
	if order := strings.ToLower(filter.SortOrder); order != "" && order != "asc" && order != "desc" {
		middleware.RespondWithError(w, http.StatusBadRequest, "order must be asc or desc")
		return
	}
	if raw := q.Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		filter.CategoryID = &id
	}

	page, err := h.catalog.ListProducts(r.Context(), filter, pageRequest(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to list products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	h.getProduct(w, r, false)
}

func (h *CatalogHandler) AdminGetProduct(w http.ResponseWriter, r *http.Request) {
	h.getProduct(w, r, true)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request, includeInactive bool) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), id, includeInactive)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to get product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	product, err := h.catalog.CreateProduct(r.Context(), req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to create product")
		return
	}
	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	product, err := h.catalog.UpdateProduct(r.Context(), id, req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to delete product")
		return
	}
	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) ToggleProductActive(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	product, err := h.catalog.ToggleProductActive(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to toggle product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}
