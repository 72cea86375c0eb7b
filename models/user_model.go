package models

import (
	"time"

	"github.com/google/uuid"
)

// User rows are owned by the external identity service; this service only
// reads them to validate that senders and recipients exist and to resolve
// logins during people search. It never updates them.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Login        string    `gorm:"size:255;not null;unique" json:"login"`
	PasswordHash string    `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
