package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/thiop/delivery/internal/domain"
)

// Delivery fee parameters. The fee charges a flat base plus a fixed
// distance component and a small per-unit surcharge for every unit
// beyond the first.
const (
	BaseFee        = 2.99
	DistanceFactor = 0.5
	DistanceKm     = 1.5
	ItemFactor     = 0.2
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// DeliveryFee is zero for an empty cart, otherwise a deterministic
// function of the total unit count.
func DeliveryFee(itemCount int) float64 {
	if itemCount <= 0 {
		return 0
	}
	fee := decimal.NewFromFloat(BaseFee).
		Add(decimal.NewFromFloat(DistanceFactor).Mul(decimal.NewFromFloat(DistanceKm))).
		Add(decimal.NewFromFloat(ItemFactor).Mul(decimal.NewFromInt(int64(itemCount - 1))))
	return fee.Round(2).InexactFloat64()
}

// Recalculate recomputes subtotal, delivery fee, discount amount and total
// in place. It runs after every cart mutation.
func Recalculate(c *domain.Cart) {
	subtotal := decimal.Zero
	count := 0
	for _, item := range c.Items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
		count += item.Quantity
	}
	subtotal = subtotal.Round(2)

	fee := decimal.NewFromFloat(DeliveryFee(count))

	discount := decimal.Zero
	if c.Discount != nil {
		discount = subtotal.Mul(decimal.NewFromFloat(c.Discount.Value)).Div(hundred).Round(2)
		c.Discount.Amount = discount.InexactFloat64()
	}

	c.Subtotal = subtotal.InexactFloat64()
	c.DeliveryFee = fee.InexactFloat64()
	c.Total = subtotal.Add(fee).Sub(discount).Round(2).InexactFloat64()
}
