package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodexpress/foodexpress-backend/pkg/enums"
)

// OrderQueueEntry is created once when a restaurant accepts an order into
// preparation. The unique index on order_id backs the idempotent enqueue.
// Entries transition pending->assigned exactly once and are never deleted;
// the table doubles as the delivery-time audit trail.
type OrderQueueEntry struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID              `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_order_queue_entries_order_id"`
	Status           enums.QueueEntryStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	WeightGrams      int                    `gorm:"column:weight_grams;not null"`
	EstimatedReadyAt time.Time              `gorm:"column:estimated_ready_at;not null"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
