package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCatalogHandler_ListProductsQuery(t *testing.T) {
	var got domain.ProductFilter
	var gotPage domain.PageRequest
	catalog := &stubCatalogService{
		listProducts: func(filter domain.ProductFilter, page domain.PageRequest) (domain.Page[*domain.Product], error) {
			got, gotPage = filter, page
			return domain.NewPage([]*domain.Product{{ID: uuid.New(), Name: "Mug"}}, 41, page.Normalize()), nil
		},
	}
	handler := NewCatalogHandler(catalog, zap.NewNop())
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	r.Route("/api/admin", handler.RegisterAdminRoutes)

	categoryID := uuid.New()

	t.Run("filters are passed through", func(t *testing.T) {
		path := fmt.Sprintf("/api/products?category_id=%s&q=%%20mug%%20&sort_by=price&order=asc&page=3&page_size=20", categoryID)
		w := doJSON(t, r, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)

		require.NotNil(t, got.CategoryID)
		assert.Equal(t, categoryID, *got.CategoryID)
		assert.Equal(t, "mug", got.Query)
		assert.Equal(t, "price", got.SortBy)
		assert.Equal(t, "asc", got.SortOrder)
		assert.False(t, got.IncludeInactive)
		assert.Equal(t, domain.PageRequest{Page: 3, PageSize: 20}, gotPage)

		var page domain.Page[*domain.Product]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, 41, page.Total)
		assert.False(t, page.HasMore)
	})

	t.Run("admin listing includes inactive products", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/admin/products", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, got.IncludeInactive)
	})

	tests := []struct {
		name string
		path string
	}{
		{"bad category", "/api/products?category_id=shoes"},
		{"unknown sort field", "/api/products?sort_by=password_hash"},
		{"unknown order", "/api/products?order=sideways"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodGet, tt.path, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCatalogHandler_GetProduct(t *testing.T) {
	active := uuid.New()
	catalog := &stubCatalogService{
		getProduct: func(id uuid.UUID, includeInactive bool) (*domain.ProductDetail, error) {
			if id != active {
				return nil, repository.ErrProductNotFound
			}
			return &domain.ProductDetail{
				Product:       domain.Product{ID: id, Name: "Mug", Price: 12.5, IsActive: true},
				AverageRating: 4.5,
				ReviewCount:   2,
			}, nil
		},
	}
	r := chi.NewRouter()
	NewCatalogHandler(catalog, zap.NewNop()).RegisterRoutes(r)

	w := doJSON(t, r, http.MethodGet, "/api/products/"+active.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail domain.ProductDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Mug", detail.Name)
	assert.Equal(t, 4.5, detail.AverageRating)
	assert.Equal(t, 2, detail.ReviewCount)

	w = doJSON(t, r, http.MethodGet, "/api/products/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/products/42", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandler_AdminMutations(t *testing.T) {
	var created service.ProductInput
	catalog := &stubCatalogService{
		createProd: func(input service.ProductInput) (*domain.Product, error) {
			created = input
			if input.Name == "Orphan" {
				return nil, service.ErrUnknownCategory
			}
			return &domain.Product{ID: uuid.New(), Name: input.Name}, nil
		},
		deleteCat: func(id uuid.UUID) error {
			return fmt.Errorf("delete category: %w", repository.ErrCategoryInUse)
		},
	}
	r := chi.NewRouter()
	NewCatalogHandler(catalog, zap.NewNop()).RegisterAdminRoutes(r)

	inactive := false
	req := ProductRequest{Name: "Mug", Price: 12.5, CategoryID: uuid.New(), Stock: 3, IsActive: &inactive}
	w := doJSON(t, r, http.MethodPost, "/products", req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, req.CategoryID, created.CategoryID)
	require.NotNil(t, created.IsActive)
	assert.False(t, *created.IsActive)

	req.Name = "Orphan"
	w = doJSON(t, r, http.MethodPost, "/products", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad := ProductRequest{Name: "Mug", Price: -1, CategoryID: uuid.New(), Stock: -2}
	w = doJSON(t, r, http.MethodPost, "/products", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation failed", errorMessage(t, w))

	w = doJSON(t, r, http.MethodDelete, "/categories/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
