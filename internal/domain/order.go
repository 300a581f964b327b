package domain

import "time"

type OrderStatus string

const (
	StatusProcessing     OrderStatus = "processing"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReadyForPickup OrderStatus = "ready_for_pickup"
	StatusOnTheWay       OrderStatus = "on_the_way"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// IsTerminal reports whether the status permits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// IsValid reports whether s is one of the known order statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusProcessing, StatusConfirmed, StatusPreparing,
		StatusReadyForPickup, StatusOnTheWay, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID                   string        `json:"id"`
	Date                 time.Time     `json:"date"`
	Status               OrderStatus   `json:"status"`
	Items                []CartItem    `json:"items"`
	Subtotal             float64       `json:"subtotal"`
	DeliveryFee          float64       `json:"deliveryFee"`
	Discount             *Discount     `json:"discount,omitempty"`
	Total                float64       `json:"total"`
	PaymentMethod        PaymentMethod `json:"paymentMethod"`
	DeliveryAddress      Address       `json:"deliveryAddress"`
	DeliveryInstructions string        `json:"deliveryInstructions,omitempty"`
	EstimatedDelivery    string        `json:"estimatedDelivery"`
	RestaurantID         string        `json:"restaurantId,omitempty"`
	RestaurantName       string        `json:"restaurantName,omitempty"`
	RestaurantImage      string        `json:"restaurantImage,omitempty"`
	CancelReason         string        `json:"cancelReason,omitempty"`
	CancelledAt          *time.Time    `json:"cancelledAt,omitempty"`
}

// Clone returns a deep copy so callers can't mutate ledger-owned state.
func (o *Order) Clone() *Order {
	out := *o
	out.Items = make([]CartItem, len(o.Items))
	for i, item := range o.Items {
		out.Items[i] = item
		out.Items[i].Options = append([]string(nil), item.Options...)
	}
	if o.Discount != nil {
		d := *o.Discount
		out.Discount = &d
	}
	if o.CancelledAt != nil {
		ts := *o.CancelledAt
		out.CancelledAt = &ts
	}
	return &out
}

type Address struct {
	ID      string `json:"id,omitempty"`
	Label   string `json:"label,omitempty"`
	Street  string `json:"street"`
	City    string `json:"city,omitempty"`
	Default bool   `json:"isDefault,omitempty"`
}

type PaymentMethod struct {
	ID    string `json:"id,omitempty"`
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
	Last4 string `json:"last4,omitempty"`
}
