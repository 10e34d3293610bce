package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodexpress/foodexpress-backend/pkg/enums"
	"github.com/foodexpress/foodexpress-backend/pkg/money"
	"github.com/foodexpress/foodexpress-backend/pkg/types"
)

// Courier is a delivery agent affiliated with one restaurant. Status moves
// online->busy only through the dispatcher's guarded update and busy->online
// only through delivery completion. WalletAmountCents is a coarse cached
// total; Wallet is the authoritative denomination map.
type Courier struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	RestaurantID     uuid.UUID           `gorm:"column:restaurant_id;type:uuid;not null"`
	VehicleType      enums.VehicleType   `gorm:"column:vehicle_type;type:text;not null"`
	HalalMode        bool                `gorm:"column:halal_mode;not null;default:false"`
	Status           enums.CourierStatus `gorm:"column:status;type:text;not null;default:'offline'"`
	Wallet           types.Wallet        `gorm:"column:wallet;type:jsonb"`
	WalletAmountCents money.Cents        `gorm:"column:wallet_amount_cents;not null;default:0"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
