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

var ErrAddressNotFound = errors.New("address not found")

// AddressRepository stores a user's address book. Every lookup is scoped to
// the owning user so one customer can never read another's addresses.
//
// Each user has at most one default address. The first address saved becomes
// the default, and deleting the default promotes the most recent remaining one.
type AddressRepository interface {
	Create(ctx context.Context, address *domain.Address) error
	Update(ctx context.Context, address *domain.Address) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Address, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error)
}

type addressRepository struct {
	db *sql.DB
}

func NewAddressRepository(db *sql.DB) AddressRepository {
	return &addressRepository{db: db}
}

const addressColumns = `id, user_id, label, recipient_name, phone, line1, line2, city, state, postal_code, country, is_default, created_at, updated_at`

func scanAddress(row rowScanner) (*domain.Address, error) {
	a := &domain.Address{}
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Label,
		&a.RecipientName,
		&a.Phone,
		&a.Line1,
		&a.Line2,
		&a.City,
		&a.State,
		&a.PostalCode,
		&a.Country,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *addressRepository) Create(ctx context.Context, a *domain.Address) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var existing int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM addresses WHERE user_id = $1`, a.UserID,
		).Scan(&existing); err != nil {
			return fmt.Errorf("failed to count addresses: %w", err)
		}
		if existing == 0 {
			a.IsDefault = true
		}
		if a.IsDefault {
			if err := clearDefaultAddress(ctx, tx, a.UserID); err != nil {
				return err
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO addresses (`+addressColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`,
			a.ID, a.UserID, a.Label, a.RecipientName, a.Phone, a.Line1, a.Line2,
			a.City, a.State, a.PostalCode, a.Country, a.IsDefault, a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to create address: %w", err)
		}
		return nil
	})
}

// Update rewrites the address. Unsetting the only default is ignored so the
// user always keeps one.
func (r *addressRepository) Update(ctx context.Context, a *domain.Address) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var wasDefault bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_default FROM addresses WHERE id = $1 AND user_id = $2 FOR UPDATE`, a.ID, a.UserID,
		).Scan(&wasDefault)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAddressNotFound
			}
			return fmt.Errorf("failed to lock address: %w", err)
		}

		if wasDefault {
			a.IsDefault = true
		} else if a.IsDefault {
			if err := clearDefaultAddress(ctx, tx, a.UserID); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE addresses
			SET label = $3, recipient_name = $4, phone = $5, line1 = $6, line2 = $7,
			    city = $8, state = $9, postal_code = $10, country = $11, is_default = $12, updated_at = $13
			WHERE id = $1 AND user_id = $2
		`,
			a.ID, a.UserID, a.Label, a.RecipientName, a.Phone, a.Line1, a.Line2,
			a.City, a.State, a.PostalCode, a.Country, a.IsDefault, a.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update address: %w", err)
		}
		return nil
	})
}

func (r *addressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var wasDefault bool
		err := tx.QueryRowContext(ctx,
			`DELETE FROM addresses WHERE id = $1 AND user_id = $2 RETURNING is_default`, id, userID,
		).Scan(&wasDefault)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAddressNotFound
			}
			return fmt.Errorf("failed to delete address: %w", err)
		}
		if !wasDefault {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE addresses SET is_default = TRUE
			WHERE id = (
				SELECT id FROM addresses WHERE user_id = $1
				ORDER BY created_at DESC, id DESC LIMIT 1
			)
		`, userID)
		if err != nil {
			return fmt.Errorf("failed to promote default address: %w", err)
		}
		return nil
	})
}

func (r *addressRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to find address: %w", err)
	}
	return a, nil
}

// ListByUser returns the default address first, then newest first.
func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []*domain.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}
	return addresses, nil
}

func clearDefaultAddress(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, userID); err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}
