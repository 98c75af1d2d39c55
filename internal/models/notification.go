package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification carries an approved outreach message to its recipient.
// The message text is the verbatim draft the sender confirmed.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
