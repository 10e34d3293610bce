package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodexpress/foodexpress-backend/pkg/enums"
	"github.com/foodexpress/foodexpress-backend/pkg/types"
)

// OrderAssignment binds one order to one courier. OptimalChange is stored
// only when the order is paid in cash and change is due; the completion flow
// replays it against the courier wallet. Both finish flags must be true
// before the order counts as delivered.
type OrderAssignment struct {
	ID                  uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID             uuid.UUID              `gorm:"column:order_id;type:uuid;not null"`
	CourierID           uuid.UUID              `gorm:"column:courier_id;type:uuid;not null"`
	Status              enums.AssignmentStatus `gorm:"column:status;type:text;not null;default:'in_delivery'"`
	AssignedAt          time.Time              `gorm:"column:assigned_at;autoCreateTime"`
	EstimatedDeliveryAt time.Time              `gorm:"column:estimated_delivery_at;not null"`
	OptimalChange       types.ChangeBreakdown  `gorm:"column:optimal_change;type:jsonb;serializer:json"`
	CourierFinish       bool                   `gorm:"column:courier_finish;not null;default:false"`
	CustomerFinish      bool                   `gorm:"column:customer_finish;not null;default:false"`
	CreatedAt           time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
