package orders

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrAuthRequired      = errors.New("authentication required to place or modify orders")
	ErrIllegalTransition = errors.New("illegal transition of order status")
)
