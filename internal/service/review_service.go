package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type ReviewService interface {
	// Submit creates the user's review of a product or replaces their
	// previous one.
	Submit(ctx context.Context, userID, productID uuid.UUID, rating int, comment string) (*domain.Review, error)
	List(ctx context.Context, productID uuid.UUID, page domain.PageRequest) (domain.Page[*domain.Review], error)
	DeleteOwn(ctx context.Context, userID, productID uuid.UUID) error
	Delete(ctx context.Context, reviewID uuid.UUID) error
}

type reviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
}

func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, orders repository.OrderRepository) ReviewService {
	return &reviewService{reviews: reviews, products: products, orders: orders}
}

func (s *reviewService) Submit(ctx context.Context, userID, productID uuid.UUID, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, repository.ErrProductNotFound
	}

	verified, err := s.orders.HasPurchased(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase history: %w", err)
	}

	now := time.Now()
	review := &domain.Review{
		ID:               uuid.New(),
		ProductID:        productID,
		UserID:           userID,
		Rating:           rating,
		Comment:          strings.TrimSpace(comment),
		VerifiedPurchase: verified,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.reviews.Upsert(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) List(ctx context.Context, productID uuid.UUID, page domain.PageRequest) (domain.Page[*domain.Review], error) {
	page = page.Normalize()
	reviews, total, err := s.reviews.ListByProduct(ctx, productID, page)
	if err != nil {
		return domain.Page[*domain.Review]{}, err
	}
	return domain.NewPage(reviews, total, page), nil
}

func (s *reviewService) DeleteOwn(ctx context.Context, userID, productID uuid.UUID) error {
	return s.reviews.DeleteByAuthor(ctx, productID, userID)
}

func (s *reviewService) Delete(ctx context.Context, reviewID uuid.UUID) error {
	return s.reviews.Delete(ctx, reviewID)
}
