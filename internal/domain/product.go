package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	CategoryID  uuid.UUID `json:"category_id" db:"category_id"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Stock       int       `json:"stock" db:"stock"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ProductDetail is a product with its review aggregate.
type ProductDetail struct {
	Product
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ProductFilter describes a catalog listing query.
type ProductFilter struct {
	CategoryID      *uuid.UUID
	Query           string
	SortBy          string
	SortOrder       string
	IncludeInactive bool
}

// Review is a customer's rating of a product. One per user and product.
type Review struct {
	ID               uuid.UUID `json:"id" db:"id"`
	ProductID        uuid.UUID `json:"product_id" db:"product_id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	AuthorName       string    `json:"author_name" db:"-"`
	Rating           int       `json:"rating" db:"rating"`
	Comment          string    `json:"comment" db:"comment"`
	VerifiedPurchase bool      `json:"verified_purchase" db:"verified_purchase"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
