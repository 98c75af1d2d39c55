package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message represents one entry in a room's append-only message log.
// Messages are immutable once created; ordering is by CreatedAt with
// ties broken by the sortable ULID.
type Message struct {
	ID         string    `json:"id"` // ULID
	RoomID     uuid.UUID `json:"room_id"`
	UserID     uuid.UUID `json:"user_id"` // the user this message belongs to
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Role       string    `json:"role"` // "user" | "assistant" | "system"
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserSender tags a sender identifier for a human user.
func UserSender(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// AgentSender tags a sender identifier for an AI agent.
func AgentSender(agent string) string {
	return fmt.Sprintf("agent:%s", agent)
}

// VoiceSender tags a sender identifier for a voice-call ingest.
func VoiceSender(id uuid.UUID) string {
	return fmt.Sprintf("voice:%s", id)
}

// SMSSender tags a sender identifier for an SMS ingest.
func SMSSender(phone string) string {
	return fmt.Sprintf("sms:%s", phone)
}
