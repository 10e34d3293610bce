package enums

import "fmt"

// KitchenCapacity reflects restaurant congestion. Preparation estimates are
// scaled by the capacity coefficient.
type KitchenCapacity string

const (
	KitchenCapacityNormal  KitchenCapacity = "normal"
	KitchenCapacityBusy    KitchenCapacity = "busy"
	KitchenCapacityCrowded KitchenCapacity = "crowded"
)

var validKitchenCapacities = []KitchenCapacity{
	KitchenCapacityNormal,
	KitchenCapacityBusy,
	KitchenCapacityCrowded,
}

// Coefficient returns the preparation-time multiplier for the capacity level.
// Unknown values fall back to the normal coefficient.
func (k KitchenCapacity) Coefficient() float64 {
	switch k {
	case KitchenCapacityBusy:
		return 1.25
	case KitchenCapacityCrowded:
		return 1.5
	default:
		return 1.0
	}
}

// IsValid reports whether the value matches the canonical kitchen capacity enum.
func (k KitchenCapacity) IsValid() bool {
	for _, candidate := range validKitchenCapacities {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseKitchenCapacity converts the raw string to KitchenCapacity.
func ParseKitchenCapacity(value string) (KitchenCapacity, error) {
	for _, candidate := range validKitchenCapacities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid kitchen capacity %q", value)
}
