package enums

import "fmt"

// OrderStatus describes the allowed values for the `status` column in orders.
// The lifecycle is monotonic: pending -> preparing -> (cancelled | delivered).
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusDelivered OrderStatus = "delivered"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusCancelled,
	OrderStatusDelivered,
}

// IsValid reports whether the value matches the canonical order status enum.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the monotonic lifecycle allows the move.
func (o OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch o {
	case OrderStatusPending:
		return next == OrderStatusPreparing || next == OrderStatusCancelled
	case OrderStatusPreparing:
		return next == OrderStatusCancelled || next == OrderStatusDelivered
	default:
		return false
	}
}

// ParseOrderStatus converts the raw string to OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
