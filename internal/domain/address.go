package domain

import (
	"time"

	"github.com/google/uuid"
)

// Address is a shipping destination saved by a user
type Address struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	Label         string    `json:"label" db:"label"`
	RecipientName string    `json:"recipient_name" db:"recipient_name"`
	Phone         string    `json:"phone" db:"phone"`
	Line1         string    `json:"line1" db:"line1"`
	Line2         string    `json:"line2" db:"line2"`
	City          string    `json:"city" db:"city"`
	State         string    `json:"state" db:"state"`
	PostalCode    string    `json:"postal_code" db:"postal_code"`
	Country       string    `json:"country" db:"country"`
	IsDefault     bool      `json:"is_default" db:"is_default"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ShippingAddress is the copy of an address frozen into an order.
type ShippingAddress struct {
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Line1         string `json:"line1"`
	Line2         string `json:"line2,omitempty"`
	City          string `json:"city"`
	State         string `json:"state,omitempty"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

func (a *Address) Snapshot() ShippingAddress {
	return ShippingAddress{
		RecipientName: a.RecipientName,
		Phone:         a.Phone,
		Line1:         a.Line1,
		Line2:         a.Line2,
		City:          a.City,
		State:         a.State,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
	}
}
