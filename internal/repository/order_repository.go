package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/database"
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderStatusConflict means the order left the expected status before
	// the update could be applied.
	ErrOrderStatusConflict = errors.New("order status changed concurrently")
	ErrInsufficientStock   = errors.New("insufficient stock")
	// ErrPendingOrderExists means the user already has an order awaiting
	// payment.
	ErrPendingOrderExists = errors.New("an order is already awaiting payment")
)

const pendingOrderIndex = "idx_orders_one_pending_per_user"

// OrderRepository persists orders with their line items.
type OrderRepository interface {
	// CreateWithItems reserves stock for every line and stores the order in
	// one transaction. Nothing is written when any line cannot be reserved.
	CreateWithItems(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByPaymentSession(ctx context.Context, sessionID string) (*domain.Order, error)
	FindPendingByUser(ctx context.Context, userID uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) ([]*domain.Order, int, error)
	// TransitionStatus moves an order from one status to another. Canceling
	// returns the reserved stock.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error
	SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID string) error
	HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Stats(ctx context.Context) (map[domain.OrderStatus]int, float64, error)
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, user_id, status, subtotal, tax, shipping, total, currency, shipping_address, payment_session_id, created_at, updated_at`

func scanOrder(row rowScanner) (*domain.Order, error) {
	o := &domain.Order{}
	var address []byte
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.Subtotal,
		&o.Tax,
		&o.Shipping,
		&o.Total,
		&o.Currency,
		&address,
		&o.PaymentSessionID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to decode shipping address: %w", err)
	}
	return o, nil
}

func (r *orderRepository) CreateWithItems(ctx context.Context, order *domain.Order) error {
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, item := range order.Items {
			result, err := tx.ExecContext(ctx, `
				UPDATE products SET stock = stock - $2, updated_at = NOW()
				WHERE id = $1 AND is_active AND stock >= $2
			`, item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("failed to reserve stock: %w", err)
			}
			if err := expectOneRow(result, fmt.Errorf("%w: %s", ErrInsufficientStock, item.ProductName)); err != nil {
				return err
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			order.ID, order.UserID, order.Status, order.Subtotal, order.Tax, order.Shipping,
			order.Total, order.Currency, address, order.PaymentSessionID, order.CreatedAt, order.UpdatedAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrUserNotFound
			}
			if isUniqueViolation(err, pendingOrderIndex) {
				return ErrPendingOrderExists
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range order.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (id, order_id, product_id, product_name, unit_price, quantity, line_total)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, item.ID, order.ID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.LineTotal)
			if err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}
		return nil
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *orderRepository) FindByPaymentSession(ctx context.Context, sessionID string) (*domain.Order, error) {
	if sessionID == "" {
		return nil, ErrOrderNotFound
	}
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_session_id = $1`, sessionID)
}

// FindPendingByUser returns the user's order awaiting payment, if any.
func (r *orderRepository) FindPendingByUser(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND status = 'PENDING'`, userID)
}

func (r *orderRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// List returns orders newest first with their items loaded.
func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) ([]*domain.Order, int, error) {
	var conditions []string
	args := []interface{}{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, len(args)+1, len(args)+2)
	args = append(args, page.PageSize, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}
	rows.Close()

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	ids := make([]string, len(orders))
	for i, o := range orders {
		byID[o.ID] = o
		ids[i] = o.ID.String()
		o.Items = []domain.OrderItem{}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, unit_price, quantity, line_total
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY product_name, id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.LineTotal,
		); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}
	return nil
}

func (r *orderRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
			id, from, to, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if err := expectOneRow(result, ErrOrderStatusConflict); err != nil {
			return err
		}

		if to != domain.OrderStatusCanceled {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE products p
			SET stock = p.stock + oi.quantity, updated_at = NOW()
			FROM order_items oi
			WHERE oi.order_id = $1 AND p.id = oi.product_id
		`, id)
		if err != nil {
			return fmt.Errorf("failed to restock canceled order: %w", err)
		}
		return nil
	})
}

func (r *orderRepository) SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_session_id = $2, updated_at = $3 WHERE id = $1`, id, sessionID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store payment session: %w", err)
	}
	return expectOneRow(result, ErrOrderNotFound)
}

// HasPurchased reports whether the user has a paid order containing the
// product.
func (r *orderRepository) HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = $1 AND oi.product_id = $2
			  AND o.status IN ('PAID', 'SHIPPED', 'COMPLETED')
		)
	`, userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return exists, nil
}

// Stats counts orders per status and sums the totals of settled orders.
func (r *orderRepository) Stats(ctx context.Context) (map[domain.OrderStatus]int, float64, error) {
	counts := make(map[domain.OrderStatus]int, len(domain.AllOrderStatuses))
	for _, s := range domain.AllOrderStatuses {
		counts[s] = 0
	}

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status domain.OrderStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, 0, fmt.Errorf("failed to scan order stats: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating order stats: %w", err)
	}

	var revenue float64
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total), 0)::float8 FROM orders
		WHERE status IN ('PAID', 'SHIPPED', 'COMPLETED')
	`).Scan(&revenue)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return counts, revenue, nil
}
