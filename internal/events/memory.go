package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// subscriberBuffer bounds each subscriber channel. Slow consumers drop
// events rather than block publishers.
const subscriberBuffer = 32

// MemoryBroker is an in-process broker for single-node deployments.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[int]chan Event
	nextID int
	closed bool
}

// NewMemoryBroker creates an in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		subs: make(map[uuid.UUID]map[int]chan Event),
	}
}

// Publish delivers an event to all current subscribers of its room.
func (b *MemoryBroker) Publish(_ context.Context, ev Event) error {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}

	for _, ch := range b.subs[ev.RoomID] {
		select {
		case ch <- ev:
		default:
			// Subscriber is not keeping up; drop.
		}
	}
	return nil
}

// Subscribe registers a consumer for a room's events.
func (b *MemoryBroker) Subscribe(_ context.Context, roomID uuid.UUID) (<-chan Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}, nil
	}

	if b.subs[roomID] == nil {
		b.subs[roomID] = make(map[int]chan Event)
	}
	id := b.nextID
	b.nextID++
	b.subs[roomID][id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if room, ok := b.subs[roomID]; ok {
			if _, ok := room[id]; ok {
				delete(room, id)
				close(ch)
				if len(room) == 0 {
					delete(b.subs, roomID)
				}
			}
		}
	}
	return ch, cancel, nil
}

// Close shuts the broker down and closes all subscriber channels.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	for _, room := range b.subs {
		for _, ch := range room {
			close(ch)
		}
	}
	b.subs = make(map[uuid.UUID]map[int]chan Event)
	return nil
}
