package service

import (
	"context"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

type CarouselService interface {
	// ListPublic returns the carousel restricted to active products.
	ListPublic(ctx context.Context) ([]*domain.CarouselItem, error)
	ListAll(ctx context.Context) ([]*domain.CarouselItem, error)
	Add(ctx context.Context, productID uuid.UUID) (*domain.CarouselItem, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, ids []uuid.UUID) ([]*domain.CarouselItem, error)
}

type carouselService struct {
	repo     repository.CarouselRepository
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewCarouselService(repo repository.CarouselRepository, c cache.Cache, cacheTTL time.Duration) CarouselService {
	return &carouselService{repo: repo, cache: c, cacheTTL: cacheTTL}
}

func (s *carouselService) ListPublic(ctx context.Context) ([]*domain.CarouselItem, error) {
	return cache.Remember(ctx, s.cache, cache.KeyCarousel, s.cacheTTL, func(ctx context.Context) ([]*domain.CarouselItem, error) {
		return s.repo.List(ctx, true)
	})
}

func (s *carouselService) ListAll(ctx context.Context) ([]*domain.CarouselItem, error) {
	return s.repo.List(ctx, false)
}

func (s *carouselService) Add(ctx context.Context, productID uuid.UUID) (*domain.CarouselItem, error) {
	item := &domain.CarouselItem{
		ID:        uuid.New(),
		ProductID: productID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Add(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return item, nil
}

func (s *carouselService) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Remove(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *carouselService) Reorder(ctx context.Context, ids []uuid.UUID) ([]*domain.CarouselItem, error) {
	if err := s.repo.Reorder(ctx, ids); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.List(ctx, false)
}

func (s *carouselService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, cache.KeyCarousel)
}
