package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/database"
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartRepository persists one cart per user. Item reads are joined with the
// product so callers see the current price, stock and active flag.
type CartRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	Items(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error)
	FindItem(ctx context.Context, cartID, productID uuid.UUID) (*domain.CartItem, error)
	UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
	SubtractOrdered(ctx context.Context, userID uuid.UUID, items []domain.OrderItem) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// GetOrCreate returns the user's cart, creating it on first use. Concurrent
// callers converge on the same row through the unique user_id constraint.
func (r *cartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New(), userID, now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	cart := &domain.Cart{}
	err = r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return cart, nil
}

const cartItemSelect = `
	SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity,
	       p.name, p.price, p.image_url, p.stock, p.is_active,
	       ci.created_at, ci.updated_at
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
`

func scanCartItem(row rowScanner) (domain.CartItem, error) {
	var item domain.CartItem
	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.ProductName,
		&item.UnitPrice,
		&item.ImageURL,
		&item.Stock,
		&item.IsActive,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	item.LineTotal = domain.RoundCents(item.UnitPrice * float64(item.Quantity))
	return item, err
}

// Items lists the cart lines in the order they were added.
func (r *cartRepository) Items(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, cartItemSelect+` WHERE ci.cart_id = $1 ORDER BY ci.created_at, ci.id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}
	return items, nil
}

func (r *cartRepository) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*domain.CartItem, error) {
	item, err := scanCartItem(r.db.QueryRowContext(ctx,
		cartItemSelect+` WHERE ci.cart_id = $1 AND ci.product_id = $2`, cartID, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &item, nil
}

// UpsertItem sets the absolute quantity of a product in the cart.
func (r *cartRepository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT ON CONSTRAINT cart_items_cart_product_key DO UPDATE
		SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
	`, uuid.New(), cartID, productID, quantity, now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to save cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return expectOneRow(result, ErrCartItemNotFound)
}

func (r *cartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// SubtractOrdered takes the ordered quantities out of the user's cart. Lines
// that drop to zero are removed; products added after the order was placed
// stay untouched.
func (r *cartRepository) SubtractOrdered(ctx context.Context, userID uuid.UUID, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	productIDs := make([]string, len(items))
	quantities := make([]int64, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID.String()
		quantities[i] = int64(item.Quantity)
	}

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM cart_items ci
			USING carts c, unnest($2::uuid[], $3::int[]) AS o(product_id, quantity)
			WHERE c.user_id = $1 AND ci.cart_id = c.id
			  AND ci.product_id = o.product_id AND ci.quantity <= o.quantity
		`, userID, pq.Array(productIDs), pq.Array(quantities))
		if err != nil {
			return fmt.Errorf("failed to remove ordered cart lines: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE cart_items ci SET quantity = ci.quantity - o.quantity, updated_at = NOW()
			FROM carts c, unnest($2::uuid[], $3::int[]) AS o(product_id, quantity)
			WHERE c.user_id = $1 AND ci.cart_id = c.id AND ci.product_id = o.product_id
		`, userID, pq.Array(productIDs), pq.Array(quantities))
		if err != nil {
			return fmt.Errorf("failed to reduce ordered cart lines: %w", err)
		}
		return nil
	})
}
