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

var ErrImageRequired = errors.New("image_url is required")

// BannerInput carries the editable banner fields. A nil IsActive keeps the
// current value on update and defaults to active on create.
type BannerInput struct {
	Title    string
	ImageURL string
	LinkURL  string
	IsActive *bool
}

type BannerService interface {
	ListActive(ctx context.Context) ([]*domain.Banner, error)
	ListAll(ctx context.Context) ([]*domain.Banner, error)
	Create(ctx context.Context, input BannerInput) (*domain.Banner, error)
	Update(ctx context.Context, id uuid.UUID, input BannerInput) (*domain.Banner, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Banner, error)
	// Reorder stores ids[i] at position i and returns the new order.
	Reorder(ctx context.Context, ids []uuid.UUID) ([]*domain.Banner, error)
}

type bannerService struct {
	repo     repository.BannerRepository
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewBannerService(repo repository.BannerRepository, c cache.Cache, cacheTTL time.Duration) BannerService {
	return &bannerService{repo: repo, cache: c, cacheTTL: cacheTTL}
}

func (s *bannerService) ListActive(ctx context.Context) ([]*domain.Banner, error) {
	return cache.Remember(ctx, s.cache, cache.KeyBanners, s.cacheTTL, func(ctx context.Context) ([]*domain.Banner, error) {
		return s.repo.List(ctx, true)
	})
}

func (s *bannerService) ListAll(ctx context.Context) ([]*domain.Banner, error) {
	return s.repo.List(ctx, false)
}

func (s *bannerService) Create(ctx context.Context, input BannerInput) (*domain.Banner, error) {
	if strings.TrimSpace(input.ImageURL) == "" {
		return nil, ErrImageRequired
	}
	now := time.Now()
	banner := &domain.Banner{
		ID:        uuid.New(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyBannerInput(banner, input)
	if err := s.repo.Create(ctx, banner); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return banner, nil
}

func (s *bannerService) Update(ctx context.Context, id uuid.UUID, input BannerInput) (*domain.Banner, error) {
	if strings.TrimSpace(input.ImageURL) == "" {
		return nil, ErrImageRequired
	}
	banner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyBannerInput(banner, input)
	banner.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, banner); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return banner, nil
}

func (s *bannerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *bannerService) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Banner, error) {
	banner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	banner.IsActive = !banner.IsActive
	banner.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, banner); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return banner, nil
}

func (s *bannerService) Reorder(ctx context.Context, ids []uuid.UUID) ([]*domain.Banner, error) {
	if err := s.repo.Reorder(ctx, ids); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.List(ctx, false)
}

func (s *bannerService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, cache.KeyBanners)
}

func applyBannerInput(b *domain.Banner, input BannerInput) {
	b.Title = strings.TrimSpace(input.Title)
	b.ImageURL = strings.TrimSpace(input.ImageURL)
	b.LinkURL = strings.TrimSpace(input.LinkURL)
	if input.IsActive != nil {
		b.IsActive = *input.IsActive
	}
}
