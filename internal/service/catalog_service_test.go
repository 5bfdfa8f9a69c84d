package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedis(client)
}

func TestCatalog_CategoriesAreCachedUntilChanged(t *testing.T) {
	ctx := context.Background()
	categories := newMockCategoryRepository()
	service := NewCatalogService(categories, newMockProductRepository(), newMockReviewRepository(), newRedisCache(t), time.Minute)

	_, err := service.CreateCategory(ctx, "  Kitchen ", "pots and pans")
	require.NoError(t, err)

	first, err := service.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "Kitchen", first[0].Name)

	_, err = service.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, categories.listCalls, "second read is served from the cache")

	_, err = service.CreateCategory(ctx, "Garden", "")
	require.NoError(t, err)
	all, err := service.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, categories.listCalls)

	_, err = service.CreateCategory(ctx, "Garden", "")
	assert.ErrorIs(t, err, repository.ErrCategoryAlreadyExists)
}

func TestCatalog_Products(t *testing.T) {
	ctx := context.Background()
	categories := newMockCategoryRepository()
	products := newMockProductRepository()
	reviews := newMockReviewRepository()
	service := NewCatalogService(categories, products, reviews, cache.Noop{}, time.Minute)

	category, err := service.CreateCategory(ctx, "Kitchen", "")
	require.NoError(t, err)

	t.Run("unknown category", func(t *testing.T) {
		_, err := service.CreateProduct(ctx, ProductInput{Name: "Pan", Price: 10, CategoryID: uuid.New()})
		assert.ErrorIs(t, err, ErrUnknownCategory)
	})

	product, err := service.CreateProduct(ctx, ProductInput{Name: "Pan", Price: 19.999, CategoryID: category.ID, Stock: 3})
	require.NoError(t, err)
	assert.True(t, product.IsActive)
	assert.Equal(t, 20.0, product.Price)

	t.Run("detail carries the rating", func(t *testing.T) {
		require.NoError(t, reviews.Upsert(ctx, &domain.Review{ID: uuid.New(), ProductID: product.ID, UserID: uuid.New(), Rating: 4}))
		require.NoError(t, reviews.Upsert(ctx, &domain.Review{ID: uuid.New(), ProductID: product.ID, UserID: uuid.New(), Rating: 5}))

		detail, err := service.GetProduct(ctx, product.ID, false)
		require.NoError(t, err)
		assert.Equal(t, 4.5, detail.AverageRating)
		assert.Equal(t, 2, detail.ReviewCount)
	})

	t.Run("inactive products are hidden from the storefront", func(t *testing.T) {
		toggled, err := service.ToggleProductActive(ctx, product.ID)
		require.NoError(t, err)
		assert.False(t, toggled.IsActive)

		_, err = service.GetProduct(ctx, product.ID, false)
		assert.ErrorIs(t, err, repository.ErrProductNotFound)

		detail, err := service.GetProduct(ctx, product.ID, true)
		require.NoError(t, err)
		assert.False(t, detail.IsActive)

		page, err := service.ListProducts(ctx, domain.ProductFilter{}, domain.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, 0, page.Total)

		page, err = service.ListProducts(ctx, domain.ProductFilter{IncludeInactive: true}, domain.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
	})

	t.Run("update keeps active flag when omitted", func(t *testing.T) {
		updated, err := service.UpdateProduct(ctx, product.ID, ProductInput{Name: "Big Pan", Price: 25, CategoryID: category.ID, Stock: 7})
		require.NoError(t, err)
		assert.Equal(t, "Big Pan", updated.Name)
		assert.Equal(t, 7, updated.Stock)
		assert.False(t, updated.IsActive)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, service.DeleteProduct(ctx, product.ID))
		count, err := service.CountProducts(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.ErrorIs(t, service.DeleteProduct(ctx, product.ID), repository.ErrProductNotFound)
	})
}

func TestCatalog_ProductWritesKeepConcurrentReservations(t *testing.T) {
	ctx := context.Background()
	categories := newMockCategoryRepository()
	products := newMockProductRepository()
	service := NewCatalogService(categories, products, newMockReviewRepository(), cache.Noop{}, time.Minute)

	category, err := service.CreateCategory(ctx, "Lighting", "")
	require.NoError(t, err)
	product, err := service.CreateProduct(ctx, ProductInput{Name: "Lamp", Price: 30, CategoryID: category.ID, Stock: 5})
	require.NoError(t, err)

	// A checkout reserves two lamps right after the admin's read.
	products.afterFind = func(id uuid.UUID) {
		products.products[id].Stock -= 2
		products.afterFind = nil
	}
	updated, err := service.UpdateProduct(ctx, product.ID, ProductInput{Name: "Desk Lamp", Price: 30, CategoryID: category.ID, Stock: 5})
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", updated.Name)
	assert.Equal(t, 3, updated.Stock)

	t.Run("restocking adds to the live value", func(t *testing.T) {
		products.afterFind = func(id uuid.UUID) {
			products.products[id].Stock--
			products.afterFind = nil
		}
		updated, err := service.UpdateProduct(ctx, product.ID, ProductInput{Name: "Desk Lamp", Price: 30, CategoryID: category.ID, Stock: 13})
		require.NoError(t, err)
		assert.Equal(t, 12, updated.Stock)
	})

	t.Run("toggling never writes stock", func(t *testing.T) {
		products.products[product.ID].Stock = 4
		toggled, err := service.ToggleProductActive(ctx, product.ID)
		require.NoError(t, err)
		assert.False(t, toggled.IsActive)
		assert.Equal(t, 4, toggled.Stock)
	})
}

func TestBannerService(t *testing.T) {
	ctx := context.Background()
	repo := &mockBannerRepository{}
	c := newRedisCache(t)
	service := NewBannerService(repo, c, time.Minute)

	_, err := service.Create(ctx, BannerInput{Title: "No image"})
	assert.ErrorIs(t, err, ErrImageRequired)

	var ids []uuid.UUID
	for _, title := range []string{"Spring", "Summer", "Autumn"} {
		b, err := service.Create(ctx, BannerInput{Title: title, ImageURL: "https://cdn.test/" + title + ".png"})
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	active, err := service.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)

	// Hiding a banner drops it from the cached public listing.
	_, err = service.ToggleActive(ctx, ids[1])
	require.NoError(t, err)
	active, err = service.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	t.Run("reorder", func(t *testing.T) {
		ordered, err := service.Reorder(ctx, []uuid.UUID{ids[2], ids[0], ids[1]})
		require.NoError(t, err)
		require.Len(t, ordered, 3)
		for pos, b := range ordered {
			assert.Equal(t, pos, b.Position)
		}
		assert.Equal(t, ids[2], ordered[0].ID)

		_, err = service.Reorder(ctx, []uuid.UUID{ids[0], ids[1]})
		assert.ErrorIs(t, err, repository.ErrInvalidOrder)

		active, err := service.ListActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Autumn", active[0].Title)
	})

	t.Run("delete compacts positions", func(t *testing.T) {
		require.NoError(t, service.Delete(ctx, ids[2]))
		all, err := service.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, 0, all[0].Position)
		assert.Equal(t, 1, all[1].Position)
	})
}

func TestCarouselService(t *testing.T) {
	ctx := context.Background()
	service := NewCarouselService(&mockCarouselRepository{}, cache.Noop{}, time.Minute)

	productID := uuid.New()
	item, err := service.Add(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 0, item.Position)

	_, err = service.Add(ctx, productID)
	assert.ErrorIs(t, err, repository.ErrCarouselItemExists)

	require.NoError(t, service.Remove(ctx, item.ID))
	assert.ErrorIs(t, service.Remove(ctx, item.ID), repository.ErrCarouselItemNotFound)
}
