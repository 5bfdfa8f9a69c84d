package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

var productSortFields = map[string]bool{
	"name":       true,
	"price":      true,
	"created_at": true,
	"stock":      true,
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id uuid.UUID, changes ProductChanges) (*domain.Product, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]*domain.Product, int, error)
	Count(ctx context.Context) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, price, category_id, image_url, stock, is_active, created_at, updated_at`

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.CategoryID,
		&product.ImageURL,
		&product.Stock,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	return product, err
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		product.ImageURL,
		product.Stock,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// ProductChanges holds the admin-editable columns. Stock moves by StockDelta
// so reservations and restocks committed meanwhile survive. A nil IsActive
// keeps the current flag.
type ProductChanges struct {
	Name        string
	Description string
	Price       float64
	CategoryID  uuid.UUID
	ImageURL    string
	StockDelta  int
	IsActive    *bool
}

// Update applies changes in a single statement and returns the stored row.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, changes ProductChanges) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, category_id = $5, image_url = $6,
		    stock = GREATEST(stock + $7, 0), is_active = COALESCE($8, is_active), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	var active sql.NullBool
	if changes.IsActive != nil {
		active = sql.NullBool{Bool: *changes.IsActive, Valid: true}
	}

	product, err := scanProduct(r.db.QueryRowContext(ctx, query,
		id,
		changes.Name,
		changes.Description,
		changes.Price,
		changes.CategoryID,
		changes.ImageURL,
		changes.StockDelta,
		active,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		if isForeignKeyViolation(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// ToggleActive flips is_active without touching any other column.
func (r *productRepository) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		UPDATE products SET is_active = NOT is_active, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to toggle product: %w", err)
	}
	return product, nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return expectOneRow(result, ErrProductNotFound)
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindByIDs loads several products in one round trip. Missing ids are simply
// absent from the map.
func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	out := make(map[uuid.UUID]*domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[])`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out[product.ID] = product
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return out, nil
}

// List retrieves products with optional category filtering, text search,
// pagination and sorting. Inactive products are hidden unless the filter asks
// for them.
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	sortBy := filter.SortBy
	if !productSortFields[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := SortOrder(strings.ToUpper(filter.SortOrder))
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	var conditions []string
	args := []interface{}{}

	if !filter.IncludeInactive {
		conditions = append(conditions, "is_active = TRUE")
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		// Use ILIKE for case-insensitive search
		args = append(args, "%"+q+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total products
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	// id breaks ties so pages stay stable while scrolling
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, sortBy, sortOrder, len(args)+1, len(args)+2)
	args = append(args, page.PageSize, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
