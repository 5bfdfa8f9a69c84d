package domain

import "math"

// PricingConfig drives CalculateCartTotals.
type PricingConfig struct {
	TaxRate               float64
	ShippingFee           float64
	FreeShippingThreshold float64
}

// LineItem is the arithmetic view of a cart or order line.
type LineItem struct {
	UnitPrice float64
	Quantity  int
}

// Totals is the price breakdown shown in the cart and frozen into orders.
// Prices are tax inclusive, so Tax is already part of Subtotal and Total is
// Subtotal plus Shipping.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	Shipping  float64 `json:"shipping"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

// CalculateCartTotals sums the lines and applies the shipping threshold.
// Shipping is free for an empty cart and whenever a positive threshold is
// reached.
func CalculateCartTotals(lines []LineItem, cfg PricingConfig) Totals {
	var totals Totals
	var subtotal float64
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal += line.UnitPrice * float64(line.Quantity)
		totals.ItemCount += line.Quantity
	}
	totals.Subtotal = RoundCents(subtotal)

	if cfg.TaxRate > 0 {
		totals.Tax = RoundCents(totals.Subtotal - totals.Subtotal/(1+cfg.TaxRate))
	}

	switch {
	case totals.ItemCount == 0:
		totals.Shipping = 0
	case cfg.FreeShippingThreshold > 0 && totals.Subtotal >= cfg.FreeShippingThreshold:
		totals.Shipping = 0
	default:
		totals.Shipping = RoundCents(cfg.ShippingFee)
	}

	totals.Total = RoundCents(totals.Subtotal + totals.Shipping)
	return totals
}

// RoundCents rounds an amount to two decimal places.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// MinorUnits converts an amount to integer cents for the payment provider.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
