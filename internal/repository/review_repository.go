package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var ErrReviewNotFound = errors.New("review not found")

// ReviewRepository stores product reviews. A user has at most one review per
// product; writing again replaces it.
type ReviewRepository interface {
	Upsert(ctx context.Context, review *domain.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, page domain.PageRequest) ([]*domain.Review, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByAuthor(ctx context.Context, productID, userID uuid.UUID) error
	Aggregate(ctx context.Context, productID uuid.UUID) (avg float64, count int, err error)
}

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewSelect = `
	SELECT r.id, r.product_id, r.user_id, TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')), r.rating, r.comment,
	       r.verified_purchase, r.created_at, r.updated_at
	FROM reviews r
	LEFT JOIN users u ON u.id = r.user_id
`

func scanReview(row rowScanner) (*domain.Review, error) {
	review := &domain.Review{}
	err := row.Scan(
		&review.ID,
		&review.ProductID,
		&review.UserID,
		&review.AuthorName,
		&review.Rating,
		&review.Comment,
		&review.VerifiedPurchase,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	return review, err
}

// Upsert inserts the review or overwrites the rating and comment of the
// user's existing review for the product. review.ID and CreatedAt are
// refreshed from the stored row.
func (r *reviewRepository) Upsert(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, user_id, rating, comment, verified_purchase, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT reviews_product_user_key DO UPDATE
		SET rating = EXCLUDED.rating,
		    comment = EXCLUDED.comment,
		    verified_purchase = EXCLUDED.verified_purchase,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		review.ID,
		review.ProductID,
		review.UserID,
		review.Rating,
		review.Comment,
		review.VerifiedPurchase,
		review.CreatedAt,
		review.UpdatedAt,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return review, nil
}

// ListByProduct returns the newest reviews first.
func (r *reviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, page domain.PageRequest) ([]*domain.Review, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE product_id = $1`, productID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		reviewSelect+` WHERE r.product_id = $1 ORDER BY r.created_at DESC, r.id LIMIT $2 OFFSET $3`,
		productID, page.PageSize, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return expectOneRow(result, ErrReviewNotFound)
}

func (r *reviewRepository) DeleteByAuthor(ctx context.Context, productID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE product_id = $1 AND user_id = $2`, productID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return expectOneRow(result, ErrReviewNotFound)
}

// Aggregate returns the mean rating and review count. A product without
// reviews yields 0, 0.
func (r *reviewRepository) Aggregate(ctx context.Context, productID uuid.UUID) (float64, int, error) {
	var (
		avg   float64
		count int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM reviews WHERE product_id = $1`,
		productID,
	).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	return avg, count, nil
}
