package enums

import "fmt"

// AssignmentStatus is the lifecycle of an order-courier assignment.
type AssignmentStatus string

const (
	AssignmentStatusInDelivery AssignmentStatus = "in_delivery"
	AssignmentStatusDelivered  AssignmentStatus = "delivered"
)

var validAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusInDelivery,
	AssignmentStatusDelivered,
}

// IsValid reports whether the value matches the canonical assignment status enum.
func (a AssignmentStatus) IsValid() bool {
	for _, candidate := range validAssignmentStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAssignmentStatus converts the raw string to AssignmentStatus.
func ParseAssignmentStatus(value string) (AssignmentStatus, error) {
	for _, candidate := range validAssignmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment status %q", value)
}
