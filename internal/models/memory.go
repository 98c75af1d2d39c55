package models

import (
	"time"

	"github.com/google/uuid"
)

// MemoryRecord is an append-only long-term note owned by an agent,
// used as supplementary context beyond the recent message window.
type MemoryRecord struct {
	ID         uuid.UUID  `json:"id"`
	AgentID    string     `json:"agent_id"`
	RoomID     *uuid.UUID `json:"room_id,omitempty"`
	Content    string     `json:"content"`
	Importance float64    `json:"importance"`
	CreatedAt  time.Time  `json:"created_at"`
}
