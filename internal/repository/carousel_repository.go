package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/database"
	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCarouselItemNotFound = errors.New("carousel item not found")
	ErrCarouselItemExists   = errors.New("product is already in the carousel")
)

// CarouselRepository stores the featured products shown on the home page.
type CarouselRepository interface {
	// List returns items by position with their product attached. Inactive
	// products are skipped when activeOnly is set.
	List(ctx context.Context, activeOnly bool) ([]*domain.CarouselItem, error)
	Add(ctx context.Context, item *domain.CarouselItem) error
	Remove(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, ids []uuid.UUID) error
}

type carouselRepository struct {
	db *sql.DB
}

func NewCarouselRepository(db *sql.DB) CarouselRepository {
	return &carouselRepository{db: db}
}

func (r *carouselRepository) List(ctx context.Context, activeOnly bool) ([]*domain.CarouselItem, error) {
	query := `
		SELECT c.id, c.product_id, c.position, c.created_at,
		       p.id, p.name, p.description, p.price, p.category_id, p.image_url,
		       p.stock, p.is_active, p.created_at, p.updated_at
		FROM carousel_items c
		JOIN products p ON p.id = c.product_id
	`
	if activeOnly {
		query += ` WHERE p.is_active`
	}
	query += ` ORDER BY c.position, c.created_at, c.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list carousel: %w", err)
	}
	defer rows.Close()

	items := []*domain.CarouselItem{}
	for rows.Next() {
		item := &domain.CarouselItem{Product: &domain.Product{}}
		p := item.Product
		if err := rows.Scan(
			&item.ID, &item.ProductID, &item.Position, &item.CreatedAt,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.ImageURL,
			&p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan carousel item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating carousel: %w", err)
	}
	return items, nil
}

func (r *carouselRepository) Add(ctx context.Context, item *domain.CarouselItem) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		pos, err := nextPosition(ctx, tx, "carousel_items")
		if err != nil {
			return err
		}
		item.Position = pos
		_, err = tx.ExecContext(ctx, `
			INSERT INTO carousel_items (id, product_id, position, created_at)
			VALUES ($1, $2, $3, $4)
		`, item.ID, item.ProductID, item.Position, item.CreatedAt)
		if err != nil {
			if isUniqueViolation(err, "carousel_items_product_id_key") {
				return ErrCarouselItemExists
			}
			if isForeignKeyViolation(err) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to add carousel item: %w", err)
		}
		return nil
	})
}

func (r *carouselRepository) Remove(ctx context.Context, id uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM carousel_items WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to remove carousel item: %w", err)
		}
		if err := expectOneRow(result, ErrCarouselItemNotFound); err != nil {
			return err
		}
		return compact(ctx, tx, "carousel_items")
	})
}

func (r *carouselRepository) Reorder(ctx context.Context, ids []uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return reorder(ctx, tx, "carousel_items", ids)
	})
}
