package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodexpress/foodexpress-backend/pkg/enums"
)

// Restaurant holds the fields dispatch needs: pickup coordinates and the
// kitchen capacity level that scales preparation estimates.
type Restaurant struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID   uuid.UUID             `gorm:"column:owner_id;type:uuid;not null"`
	Name      string                `gorm:"column:name;not null"`
	Address   string                `gorm:"column:address;not null"`
	Latitude  float64               `gorm:"column:latitude;not null"`
	Longitude float64               `gorm:"column:longitude;not null"`
	Capacity  enums.KitchenCapacity `gorm:"column:capacity;type:text;not null;default:'normal'"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
