package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/Yug-More/Parallel-AI/internal/crypto"
	"github.com/Yug-More/Parallel-AI/internal/models"
)

// defaultImportance is the baseline score for memory records that
// carry no explicit importance.
const defaultImportance = 0.3

func fillMessageDefaults(msg *models.Message) {
	if msg.ID == "" {
		msg.ID = ulid.Make().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
}

func fillMemoryDefaults(rec *models.MemoryRecord) {
	if rec.ID == uuid.Nil {
		rec.ID = crypto.NewUUIDv7()
	}
	if rec.Importance == 0 {
		rec.Importance = defaultImportance
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}

func fillNotificationDefaults(n *models.Notification) {
	if n.ID == uuid.Nil {
		n.ID = crypto.NewUUIDv7()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
}

func reverseMessages(messages []models.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
