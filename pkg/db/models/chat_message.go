package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one direct message between two users. The dispatcher writes
// one courier->customer message when an assignment is created.
type ChatMessage struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null"`
	Text       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"type:timestamptz;default:now()"`
}
