package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// ErrUnknownCategory is returned when a product names a category that does
// not exist.
var ErrUnknownCategory = errors.New("category does not exist")

// ProductInput carries the editable product fields. A nil IsActive keeps the
// current value on update and defaults to active on create.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	CategoryID  uuid.UUID
	ImageURL    string
	Stock       int
	IsActive    *bool
}

type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[*domain.Product], error)
	// GetProduct hides inactive products unless includeInactive is set.
	GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*domain.ProductDetail, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ToggleProductActive(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CountProducts(ctx context.Context) (int, error)
}

type catalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	reviews    repository.ReviewRepository
	cache      cache.Cache
	cacheTTL   time.Duration
}

func NewCatalogService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	reviews repository.ReviewRepository,
	c cache.Cache,
	cacheTTL time.Duration,
) CatalogService {
	return &catalogService{
		categories: categories,
		products:   products,
		reviews:    reviews,
		cache:      c,
		cacheTTL:   cacheTTL,
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return cache.Remember(ctx, s.cache, cache.KeyCategories, s.cacheTTL, s.categories.List)
}

func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.KeyCategories)
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) (*domain.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(name)
	category.Description = description
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.KeyCategories)
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cache.KeyCategories)
	return nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[*domain.Product], error) {
	page = page.Normalize()
	products, total, err := s.products.List(ctx, filter, page)
	if err != nil {
		return domain.Page[*domain.Product]{}, err
	}
	return domain.NewPage(products, total, page), nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*domain.ProductDetail, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !includeInactive {
		return nil, repository.ErrProductNotFound
	}

	avg, count, err := s.reviews.Aggregate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.ProductDetail{
		Product:       *product,
		AverageRating: domain.RoundCents(avg),
		ReviewCount:   count,
	}, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:        uuid.New(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyProductInput(product, input)

	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrUnknownCategory
		}
		return nil, err
	}
	s.invalidate(ctx, cache.KeyCarousel)
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	current, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.CategoryID != current.CategoryID {
		if err := s.checkCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	// The submitted stock is applied relative to the value read here.
	product, err := s.products.Update(ctx, id, repository.ProductChanges{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       domain.RoundCents(input.Price),
		CategoryID:  input.CategoryID,
		ImageURL:    input.ImageURL,
		StockDelta:  input.Stock - current.Stock,
		IsActive:    input.IsActive,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrUnknownCategory
		}
		return nil, err
	}
	s.invalidate(ctx, cache.KeyCarousel)
	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cache.KeyCarousel)
	return nil
}

func (s *catalogService) ToggleProductActive(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.products.ToggleActive(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.KeyCarousel)
	return product, nil
}

func (s *catalogService) CountProducts(ctx context.Context) (int, error) {
	return s.products.Count(ctx)
}

func (s *catalogService) checkCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrUnknownCategory
		}
		return err
	}
	return nil
}

// invalidate drops cached listings. A failure only delays freshness until the
// TTL expires.
func (s *catalogService) invalidate(ctx context.Context, keys ...string) {
	_ = s.cache.Delete(ctx, keys...)
}

func applyProductInput(p *domain.Product, input ProductInput) {
	p.Name = strings.TrimSpace(input.Name)
	p.Description = input.Description
	p.Price = domain.RoundCents(input.Price)
	p.CategoryID = input.CategoryID
	p.ImageURL = input.ImageURL
	p.Stock = input.Stock
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
}
