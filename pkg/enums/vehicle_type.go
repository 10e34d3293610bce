package enums

import "fmt"

// VehicleType is the courier's delivery vehicle. Routing profiles and the
// dispatch weight/distance criteria key off this value.
type VehicleType string

const (
	VehicleTypeBike VehicleType = "bike"
	VehicleTypeCar  VehicleType = "car"
)

var validVehicleTypes = []VehicleType{
	VehicleTypeBike,
	VehicleTypeCar,
}

// IsValid reports whether the value matches the canonical vehicle type enum.
func (v VehicleType) IsValid() bool {
	for _, candidate := range validVehicleTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVehicleType converts the raw string to VehicleType.
func ParseVehicleType(value string) (VehicleType, error) {
	for _, candidate := range validVehicleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle type %q", value)
}
