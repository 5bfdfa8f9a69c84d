package domain

import "time"

// PaymentConfig holds the shop-wide checkout settings edited in the back
// office. There is exactly one row.
type PaymentConfig struct {
	ID                    int       `json:"id" db:"id"`
	Currency              string    `json:"currency" db:"currency"`
	TaxRate               float64   `json:"tax_rate" db:"tax_rate"`
	ShippingFee           float64   `json:"shipping_fee" db:"shipping_fee"`
	FreeShippingThreshold float64   `json:"free_shipping_threshold" db:"free_shipping_threshold"`
	Enabled               bool      `json:"enabled" db:"enabled"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

// Pricing extracts the settings the totals calculation needs.
func (c *PaymentConfig) Pricing() PricingConfig {
	return PricingConfig{
		TaxRate:               c.TaxRate,
		ShippingFee:           c.ShippingFee,
		FreeShippingThreshold: c.FreeShippingThreshold,
	}
}

// DefaultPaymentConfig is used until an admin saves one.
func DefaultPaymentConfig() *PaymentConfig {
	return &PaymentConfig{
		ID:                    1,
		Currency:              "usd",
		TaxRate:               0.07,
		ShippingFee:           5,
		FreeShippingThreshold: 50,
		Enabled:               true,
	}
}
