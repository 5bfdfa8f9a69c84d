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

var ErrBannerNotFound = errors.New("banner not found")

// BannerRepository stores home page banners ordered by position.
type BannerRepository interface {
	List(ctx context.Context, activeOnly bool) ([]*domain.Banner, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Banner, error)
	// Create appends the banner after the current last position.
	Create(ctx context.Context, banner *domain.Banner) error
	Update(ctx context.Context, banner *domain.Banner) error
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, ids []uuid.UUID) error
}

type bannerRepository struct {
	db *sql.DB
}

func NewBannerRepository(db *sql.DB) BannerRepository {
	return &bannerRepository{db: db}
}

const bannerColumns = `id, title, image_url, link_url, position, is_active, created_at, updated_at`

func scanBanner(row rowScanner) (*domain.Banner, error) {
	b := &domain.Banner{}
	err := row.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Position, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *bannerRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Banner, error) {
	query := `SELECT ` + bannerColumns + ` FROM banners`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY position, created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list banners: %w", err)
	}
	defer rows.Close()

	banners := []*domain.Banner{}
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan banner: %w", err)
		}
		banners = append(banners, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating banners: %w", err)
	}
	return banners, nil
}

func (r *bannerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Banner, error) {
	b, err := scanBanner(r.db.QueryRowContext(ctx, `SELECT `+bannerColumns+` FROM banners WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBannerNotFound
		}
		return nil, fmt.Errorf("failed to find banner: %w", err)
	}
	return b, nil
}

func (r *bannerRepository) Create(ctx context.Context, b *domain.Banner) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		pos, err := nextPosition(ctx, tx, "banners")
		if err != nil {
			return err
		}
		b.Position = pos
		_, err = tx.ExecContext(ctx, `
			INSERT INTO banners (`+bannerColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, b.ID, b.Title, b.ImageURL, b.LinkURL, b.Position, b.IsActive, b.CreatedAt, b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create banner: %w", err)
		}
		return nil
	})
}

// Update changes content fields. Position only moves through Reorder.
func (r *bannerRepository) Update(ctx context.Context, b *domain.Banner) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE banners SET title = $2, image_url = $3, link_url = $4, is_active = $5, updated_at = $6
		WHERE id = $1
	`, b.ID, b.Title, b.ImageURL, b.LinkURL, b.IsActive, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update banner: %w", err)
	}
	return expectOneRow(result, ErrBannerNotFound)
}

func (r *bannerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM banners WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete banner: %w", err)
		}
		if err := expectOneRow(result, ErrBannerNotFound); err != nil {
			return err
		}
		return compact(ctx, tx, "banners")
	})
}

func (r *bannerRepository) Reorder(ctx context.Context, ids []uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return reorder(ctx, tx, "banners", ids)
	})
}
