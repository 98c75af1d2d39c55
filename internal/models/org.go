package models

import (
	"time"

	"github.com/google/uuid"
)

// Org represents an organization owning a set of users and rooms.
type Org struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
