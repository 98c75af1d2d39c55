package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/Yug-More/Parallel-AI/internal/models"
)

// DataStore defines the interface for persistent storage of workspace
// entities. Both PostgresStore and SQLiteStore implement this interface.
// Messages and memory records are append-only; the only mutable fields
// are a room's summary columns, a user's last_seen_at and a
// notification's read flag.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Org operations
	CreateOrg(ctx context.Context, name string) (*models.Org, error)
	GetOrg(ctx context.Context, id uuid.UUID) (*models.Org, error)
	GetOrgByName(ctx context.Context, name string) (*models.Org, error)

	// User operations
	CreateUser(ctx context.Context, orgID uuid.UUID, email, name, role, passwordHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByName(ctx context.Context, orgID uuid.UUID, name string) (*models.User, error)
	ListUsers(ctx context.Context, orgID uuid.UUID) ([]models.User, error)
	GetCredential(ctx context.Context, userID uuid.UUID) (string, error)
	TouchUserSeen(ctx context.Context, id uuid.UUID) error
	CountUsers(ctx context.Context) (int64, error)

	// Room operations
	CreateRoom(ctx context.Context, orgID uuid.UUID, name string) (*models.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	ListRooms(ctx context.Context, orgID uuid.UUID) ([]models.Room, error)
	UpdateRoomSummary(ctx context.Context, id uuid.UUID, summary string) error
	UpdateRoomOrg(ctx context.Context, id, orgID uuid.UUID) error
	CountRooms(ctx context.Context) (int64, error)

	// Message operations (append-only)
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListRoomMessages(ctx context.Context, roomID uuid.UUID, limit int) ([]models.Message, error)
	LatestAssistantMessage(ctx context.Context, roomID uuid.UUID) (*models.Message, error)
	CountMessages(ctx context.Context) (int64, error)

	// Memory operations (append-only)
	CreateMemoryRecord(ctx context.Context, rec *models.MemoryRecord) error
	ListAgentMemory(ctx context.Context, agentID string, roomID *uuid.UUID, limit int) ([]models.MemoryRecord, error)

	// Notification operations
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error
	CountNotifications(ctx context.Context) (int64, error)
}
