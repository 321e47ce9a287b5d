package model

import (
	"time"

	"github.com/google/uuid"
)

// Note is a free-text message left by a user for the next shift.
type Note struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Description string    `gorm:"not null"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null"`
	User        *User     `gorm:"foreignKey:UserID"`
	Date        time.Time `gorm:"type:date;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
