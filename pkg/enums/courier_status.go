package enums

import "fmt"

// CourierStatus tracks courier availability. Only the dispatcher moves a
// courier to busy; the delivery completion flow moves them back online.
type CourierStatus string

const (
	CourierStatusOffline CourierStatus = "offline"
	CourierStatusOnline  CourierStatus = "online"
	CourierStatusBusy    CourierStatus = "busy"
)

var validCourierStatuses = []CourierStatus{
	CourierStatusOffline,
	CourierStatusOnline,
	CourierStatusBusy,
}

// IsValid reports whether the value matches the canonical courier status enum.
func (c CourierStatus) IsValid() bool {
	for _, candidate := range validCourierStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCourierStatus converts the raw string to CourierStatus.
func ParseCourierStatus(value string) (CourierStatus, error) {
	for _, candidate := range validCourierStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid courier status %q", value)
}
