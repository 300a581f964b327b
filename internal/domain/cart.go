package domain

import "sort"

type Cart struct {
	Items       []CartItem `json:"items"`
	Subtotal    float64    `json:"subtotal"`
	DeliveryFee float64    `json:"deliveryFee"`
	Total       float64    `json:"total"`
	Discount    *Discount  `json:"discount,omitempty"`
}

type CartItem struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	Image          string   `json:"image,omitempty"`
	Quantity       int      `json:"quantity"`
	Options        []string `json:"options,omitempty"`
	RestaurantID   string   `json:"restaurantId,omitempty"`
	RestaurantName string   `json:"restaurantName,omitempty"`
}

type Discount struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
	Type   string  `json:"type"`
	Value  float64 `json:"value"`
}

// SameLine reports whether an item with the given product id and selected
// options belongs to this cart line. Option order does not matter; the
// selections are compared as sorted multisets.
func (i CartItem) SameLine(id string, options []string) bool {
	if i.ID != id || len(i.Options) != len(options) {
		return false
	}
	a := append([]string(nil), i.Options...)
	b := append([]string(nil), options...)
	sort.Strings(a)
	sort.Strings(b)
	for k := range a {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}

// ItemCount is the total unit count across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Clone returns a deep copy so callers can't mutate engine-owned state.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Items = make([]CartItem, len(c.Items))
	for i, item := range c.Items {
		out.Items[i] = item
		out.Items[i].Options = append([]string(nil), item.Options...)
	}
	if c.Discount != nil {
		d := *c.Discount
		out.Discount = &d
	}
	return &out
}
