package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// roomChannel returns the pub/sub channel name for a room.
func roomChannel(roomID uuid.UUID) string {
	return fmt.Sprintf("events:room:%s", roomID)
}

// RedisBroker distributes events across server instances via Redis
// pub/sub.
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker creates a broker on an existing Redis client.
func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

// Publish delivers an event to all subscribers of its room, on every
// server instance.
func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, roomChannel(ev.RoomID), data).Err()
}

// Subscribe registers a consumer for a room's events.
func (b *RedisBroker) Subscribe(ctx context.Context, roomID uuid.UUID) (<-chan Event, func(), error) {
	sub := b.client.Subscribe(ctx, roomChannel(roomID))

	// Confirm the subscription before handing the channel out.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, err
	}

	ch := make(chan Event, subscriberBuffer)
	go func() {
		defer close(ch)
		for msg := range sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}()

	cancel := func() {
		sub.Close()
	}
	return ch, cancel, nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (b *RedisBroker) Close() error {
	return nil
}
