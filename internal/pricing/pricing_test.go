package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thiop/delivery/internal/domain"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.94, Round2(3.94))
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, -1.01, Round2(-1.005))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 2.67, Round2(2.666666))
}

func TestDeliveryFee_EmptyCart(t *testing.T) {
	assert.Equal(t, 0.0, DeliveryFee(0))
	assert.Equal(t, 0.0, DeliveryFee(-1))
}

func TestDeliveryFee_SingleItem(t *testing.T) {
	// 2.99 + 0.5*1.5 + 0.2*0 = 3.74
	assert.Equal(t, 3.74, DeliveryFee(1))
}

func TestDeliveryFee_StrictlyIncreasing(t *testing.T) {
	prev := 0.0
	for count := 1; count <= 20; count++ {
		fee := DeliveryFee(count)
		assert.Greater(t, fee, prev, "fee must grow with item count %d", count)
		prev = fee
	}
}

func TestRecalculate_KnownScenario(t *testing.T) {
	// One item, price 10.00, qty 2: subtotal 20.00,
	// fee = round2(2.99 + 0.75 + 0.2*1) = 3.94, total 23.94.
	cart := &domain.Cart{
		Items: []domain.CartItem{{ID: "1", Name: "Thieboudienne", Price: 10.00, Quantity: 2}},
	}
	Recalculate(cart)

	assert.Equal(t, 20.00, cart.Subtotal)
	assert.Equal(t, 3.94, cart.DeliveryFee)
	assert.Equal(t, 23.94, cart.Total)
}

func TestRecalculate_WithDiscount(t *testing.T) {
	cart := &domain.Cart{
		Items:    []domain.CartItem{{ID: "1", Price: 10.00, Quantity: 2}},
		Discount: &domain.Discount{Code: "WELCOME10", Type: "percent", Value: 10},
	}
	Recalculate(cart)

	assert.Equal(t, 2.00, cart.Discount.Amount)
	assert.Equal(t, 21.94, cart.Total)
}

func TestRecalculate_FloatHeavyPrices(t *testing.T) {
	cart := &domain.Cart{
		Items: []domain.CartItem{
			{ID: "1", Price: 12.99, Quantity: 3},
			{ID: "2", Price: 8.49, Quantity: 1},
		},
	}
	Recalculate(cart)

	// 38.97 + 8.49 = 47.46; fee = 2.99 + 0.75 + 0.2*3 = 4.34
	assert.Equal(t, 47.46, cart.Subtotal)
	assert.Equal(t, 4.34, cart.DeliveryFee)
	assert.Equal(t, 51.80, cart.Total)
}

func TestRecalculate_EmptyCartZeroesTotals(t *testing.T) {
	cart := &domain.Cart{
		Subtotal:    99,
		DeliveryFee: 99,
		Total:       99,
	}
	Recalculate(cart)

	assert.Equal(t, 0.0, cart.Subtotal)
	assert.Equal(t, 0.0, cart.DeliveryFee)
	assert.Equal(t, 0.0, cart.Total)
}
