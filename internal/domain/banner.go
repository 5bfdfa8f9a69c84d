package domain

import (
	"time"

	"github.com/google/uuid"
)

// Banner is a promotional image shown on the storefront home page
type Banner struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	LinkURL   string    `json:"link_url" db:"link_url"`
	Position  int       `json:"position" db:"position"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CarouselItem places a featured product in the home page carousel
type CarouselItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Position  int       `json:"position" db:"position"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
