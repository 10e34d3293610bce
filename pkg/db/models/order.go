package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodexpress/foodexpress-backend/pkg/enums"
	"github.com/foodexpress/foodexpress-backend/pkg/money"
	"github.com/foodexpress/foodexpress-backend/pkg/types"
)

// Order is a customer purchase at a single restaurant. TotalCents is the sum
// of the item subtotals at creation time and is never recomputed. Tender is
// present only for cash orders and holds the denominations the customer
// declared they will pay with.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RestaurantID      uuid.UUID           `gorm:"column:restaurant_id;type:uuid;not null"`
	CustomerID        uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	Status            enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'cash'"`
	TotalCents        money.Cents         `gorm:"column:total_cents;not null"`
	Tender            types.Wallet        `gorm:"column:tender;type:jsonb"`
	DeliveryAddress   string              `gorm:"column:delivery_address;not null"`
	DeliveryLatitude  float64             `gorm:"column:delivery_latitude;not null"`
	DeliveryLongitude float64             `gorm:"column:delivery_longitude;not null"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
