package models

import (
	"github.com/google/uuid"

	"github.com/foodexpress/foodexpress-backend/pkg/enums"
	"github.com/foodexpress/foodexpress-backend/pkg/money"
)

// OrderItem snapshots one menu item line at order time. Weight and prep time
// are copied from the menu item so dispatch never depends on later menu edits.
type OrderItem struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID          `gorm:"column:order_id;type:uuid;not null"`
	ItemID          uuid.UUID          `gorm:"column:item_id;type:uuid;not null"`
	Name            string             `gorm:"column:name;not null"`
	Category        enums.ItemCategory `gorm:"column:category;type:text;not null"`
	UnitPriceCents  money.Cents        `gorm:"column:unit_price_cents;not null"`
	Quantity        int                `gorm:"column:quantity;not null"`
	WeightGrams     int                `gorm:"column:weight_grams;not null"`
	PrepTimeMinutes int                `gorm:"column:prep_time_minutes;not null"`
}

// SubtotalCents is the line total in minor units.
func (i OrderItem) SubtotalCents() money.Cents {
	return i.UnitPriceCents * money.Cents(i.Quantity)
}
