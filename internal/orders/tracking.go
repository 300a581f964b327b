package orders

import (
	"time"

	"github.com/thiop/delivery/internal/domain"
)

// TrackingInfo is the point-in-time delivery view derived from the time
// elapsed since the order was placed.
type TrackingInfo struct {
	OrderID          string             `json:"orderId"`
	Status           domain.OrderStatus `json:"status"`
	Progress         float64            `json:"progress"`
	EstimatedArrival string             `json:"estimatedArrival"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// deriveStatus maps elapsed wall-clock time onto the simulated delivery
// lifecycle. It stands in for a real dispatch integration.
func deriveStatus(elapsed time.Duration) (domain.OrderStatus, float64, string) {
	minutes := elapsed.Minutes()
	switch {
	case minutes < 5:
		return domain.StatusConfirmed, 0.1, "30-40 min"
	case minutes < 10:
		return domain.StatusPreparing, 0.3, "25-35 min"
	case minutes < 20:
		return domain.StatusReadyForPickup, 0.6, "15-20 min"
	case minutes < 30:
		return domain.StatusOnTheWay, 0.8, "5-10 min"
	default:
		return domain.StatusDelivered, 1.0, "Delivered"
	}
}

// terminalTracking reports a finished order without re-deriving anything.
func terminalTracking(order *domain.Order, now time.Time) *TrackingInfo {
	info := &TrackingInfo{
		OrderID:   order.ID,
		Status:    order.Status,
		UpdatedAt: now,
	}
	if order.Status == domain.StatusDelivered {
		info.Progress = 1.0
		info.EstimatedArrival = "Delivered"
	}
	return info
}
