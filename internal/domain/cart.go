package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a user's in-progress collection of line items.
type Cart struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CartItem is a stored cart line joined with the product it points at.
type CartItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CartID      uuid.UUID `json:"cart_id" db:"cart_id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	ProductName string    `json:"product_name"`
	UnitPrice   float64   `json:"unit_price"`
	ImageURL    string    `json:"image_url"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"is_active"`
	LineTotal   float64   `json:"line_total"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CartView is what the storefront renders for the cart page.
type CartView struct {
	Items  []CartItem `json:"items"`
	Totals Totals     `json:"totals"`
}
