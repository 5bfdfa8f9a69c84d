package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCanceled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCanceled},
	OrderStatusShipped: {OrderStatusCompleted},
}

// AllOrderStatuses in lifecycle order.
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCanceled,
}

func (s OrderStatus) Valid() bool {
	for _, status := range AllOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// COMPLETED and CANCELED are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Settled reports whether money has been captured for an order in this state.
func (s OrderStatus) Settled() bool {
	return s == OrderStatusPaid || s == OrderStatusShipped || s == OrderStatusCompleted
}

// Order is an immutable snapshot of a cart plus its status
type Order struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	UserID           uuid.UUID       `json:"user_id" db:"user_id"`
	Status           OrderStatus     `json:"status" db:"status"`
	Subtotal         float64         `json:"subtotal" db:"subtotal"`
	Tax              float64         `json:"tax" db:"tax"`
	Shipping         float64         `json:"shipping" db:"shipping"`
	Total            float64         `json:"total" db:"total"`
	Currency         string          `json:"currency" db:"currency"`
	ShippingAddress  ShippingAddress `json:"shipping_address" db:"shipping_address"`
	PaymentSessionID string          `json:"payment_session_id,omitempty" db:"payment_session_id"`
	Items            []OrderItem     `json:"items,omitempty"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem is a frozen cart line
type OrderItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OrderID     uuid.UUID `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID `json:"product_id" db:"product_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	Quantity    int       `json:"quantity" db:"quantity"`
	LineTotal   float64   `json:"line_total" db:"line_total"`
}

// Matches reports whether the order was placed for exactly these cart lines,
// at their current prices, shipped to address.
func (o *Order) Matches(address ShippingAddress, items []CartItem) bool {
	if o.ShippingAddress != address || len(o.Items) != len(items) {
		return false
	}
	ordered := make(map[uuid.UUID]OrderItem, len(o.Items))
	for _, item := range o.Items {
		ordered[item.ProductID] = item
	}
	for _, line := range items {
		item, ok := ordered[line.ProductID]
		if !ok || item.Quantity != line.Quantity || item.UnitPrice != line.UnitPrice {
			return false
		}
	}
	return true
}

// OrderFilter narrows order listings. Zero values mean "any".
type OrderFilter struct {
	UserID *uuid.UUID
	Status OrderStatus
}

// DashboardStats summarises the shop for the back office landing page.
type DashboardStats struct {
	OrdersByStatus map[OrderStatus]int `json:"orders_by_status"`
	Revenue        float64             `json:"revenue"`
	ProductCount   int                 `json:"product_count"`
	UserCount      int                 `json:"user_count"`
}
