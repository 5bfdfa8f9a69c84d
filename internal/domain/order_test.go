package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderStatusPending: {OrderStatusPaid, OrderStatusCanceled},
		OrderStatusPaid:    {OrderStatusShipped, OrderStatusCanceled},
		OrderStatusShipped: {OrderStatusCompleted},
	}

	for _, from := range AllOrderStatuses {
		for _, to := range AllOrderStatuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderStatus("SHIPPED").Valid())
	assert.False(t, OrderStatus("shipped").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderStatus_Settled(t *testing.T) {
	assert.False(t, OrderStatusPending.Settled())
	assert.True(t, OrderStatusPaid.Settled())
	assert.True(t, OrderStatusShipped.Settled())
	assert.True(t, OrderStatusCompleted.Settled())
	assert.False(t, OrderStatusCanceled.Settled())
}

func TestOrder_Matches(t *testing.T) {
	mug, lamp := uuid.New(), uuid.New()
	address := ShippingAddress{RecipientName: "Ada", Line1: "1 Main St", City: "Town", PostalCode: "1", Country: "GB"}
	order := &Order{
		ShippingAddress: address,
		Items: []OrderItem{
			{ProductID: mug, UnitPrice: 8, Quantity: 2},
			{ProductID: lamp, UnitPrice: 30, Quantity: 1},
		},
	}
	cart := []CartItem{
		{ProductID: lamp, UnitPrice: 30, Quantity: 1},
		{ProductID: mug, UnitPrice: 8, Quantity: 2},
	}
	assert.True(t, order.Matches(address, cart))

	moved := address
	moved.City = "Elsewhere"
	assert.False(t, order.Matches(moved, cart))

	more := []CartItem{{ProductID: lamp, UnitPrice: 30, Quantity: 1}, {ProductID: mug, UnitPrice: 8, Quantity: 3}}
	assert.False(t, order.Matches(address, more))

	repriced := []CartItem{{ProductID: lamp, UnitPrice: 25, Quantity: 1}, {ProductID: mug, UnitPrice: 8, Quantity: 2}}
	assert.False(t, order.Matches(address, repriced))

	assert.False(t, order.Matches(address, cart[:1]))
}
