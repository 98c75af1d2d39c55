// Package events fans out room-scoped server events to connected
// stream consumers. Two brokers are provided: an in-process one for
// single-node and development deployments, and a Redis pub/sub one for
// multi-node deployments.
package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Event types published by the server.
const (
	TypeMessageCreated = "message.created"
	TypeSummaryUpdated = "summary.updated"
	TypeNotification   = "notification.created"
)

// Event is a room-scoped broadcast payload.
type Event struct {
	Type      string          `json:"type"`
	RoomID    uuid.UUID       `json:"room_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"ts"`
}

// Broker distributes events to room subscribers.
type Broker interface {
	// Publish delivers an event to all current subscribers of its room.
	Publish(ctx context.Context, ev Event) error

	// Subscribe registers a consumer for a room's events. The returned
	// cancel func releases the subscription; the channel is closed
	// after cancel or when the broker shuts down.
	Subscribe(ctx context.Context, roomID uuid.UUID) (<-chan Event, func(), error)

	// Close shuts the broker down.
	Close() error
}

// Marshal encodes a value as an event data payload.
func Marshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
