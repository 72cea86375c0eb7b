package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a directed row: sender and recipient keep their roles, but every
// conversation query treats the pair as unordered. Both composite indexes are
// needed so the symmetric predicate can be served in either direction.
type Message struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SenderID    uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_sender_recipient_created,priority:1;index:idx_messages_recipient_sender_created,priority:2" json:"sender"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_recipient_sender_created,priority:1;index:idx_messages_sender_recipient_created,priority:2" json:"recipient"`
	Content     string    `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `gorm:"index:idx_messages_sender_recipient_created,priority:3;index:idx_messages_recipient_sender_created,priority:3" json:"created_at"`
}
