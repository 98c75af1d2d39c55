package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryBrokerPublishSubscribe(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	roomID := uuid.New()
	ch, cancel, err := b.Subscribe(context.Background(), roomID)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancel()

	ev := Event{Type: TypeMessageCreated, RoomID: roomID}
	if err := b.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case got := <-ch:
		if got.Type != TypeMessageCreated {
			t.Errorf("expected type %q, got %q", TypeMessageCreated, got.Type)
		}
		if got.RoomID != roomID {
			t.Errorf("expected room %s, got %s", roomID, got.RoomID)
		}
		if got.Timestamp == 0 {
			t.Error("expected a timestamp to be set")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestMemoryBrokerRoomIsolation(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	roomA := uuid.New()
	roomB := uuid.New()

	chA, cancelA, _ := b.Subscribe(context.Background(), roomA)
	defer cancelA()

	b.Publish(context.Background(), Event{Type: TypeSummaryUpdated, RoomID: roomB})

	select {
	case ev := <-chA:
		t.Fatalf("room A received room B's event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBrokerCancelClosesChannel(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	roomID := uuid.New()
	ch, cancel, _ := b.Subscribe(context.Background(), roomID)

	cancel()
	// Second cancel must be safe.
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after cancel")
	}

	// Publishing after cancel must not panic.
	if err := b.Publish(context.Background(), Event{Type: TypeMessageCreated, RoomID: roomID}); err != nil {
		t.Fatalf("Publish after cancel failed: %v", err)
	}
}

func TestMemoryBrokerSlowConsumerDrops(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	roomID := uuid.New()
	ch, cancel, _ := b.Subscribe(context.Background(), roomID)
	defer cancel()

	// Overfill the buffer; publishes must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			b.Publish(context.Background(), Event{Type: TypeMessageCreated, RoomID: roomID})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishes blocked on a slow consumer")
	}

	if len(ch) != subscriberBuffer {
		t.Errorf("expected exactly %d buffered events, got %d", subscriberBuffer, len(ch))
	}
}

func TestMemoryBrokerClose(t *testing.T) {
	b := NewMemoryBroker()

	roomID := uuid.New()
	ch, cancel, _ := b.Subscribe(context.Background(), roomID)
	defer cancel()

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after broker Close")
	}

	// Subscribing after close returns a closed channel.
	ch2, cancel2, err := b.Subscribe(context.Background(), roomID)
	if err != nil {
		t.Fatalf("Subscribe after close failed: %v", err)
	}
	defer cancel2()
	if _, ok := <-ch2; ok {
		t.Fatal("expected closed channel from post-close Subscribe")
	}
}
