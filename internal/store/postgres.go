package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Yug-More/Parallel-AI/internal/crypto"
	"github.com/Yug-More/Parallel-AI/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateOrg creates a new organization.
func (s *PostgresStore) CreateOrg(ctx context.Context, name string) (*models.Org, error) {
	org := &models.Org{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO orgs (id, name)
		VALUES ($1, $2)
		RETURNING id, name, created_at
	`, crypto.NewUUIDv7(), name).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if err != nil {
		return nil, err
	}
	return org, nil
}

// GetOrg retrieves an organization by ID.
func (s *PostgresStore) GetOrg(ctx context.Context, id uuid.UUID) (*models.Org, error) {
	org := &models.Org{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, created_at FROM orgs WHERE id = $1
	`, id).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

// GetOrgByName retrieves an organization by case-insensitive name.
func (s *PostgresStore) GetOrgByName(ctx context.Context, name string) (*models.Org, error) {
	org := &models.Org{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, created_at FROM orgs WHERE LOWER(name) = LOWER($1)
	`, name).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

// CreateUser creates a user and its credential row in one transaction.
func (s *PostgresStore) CreateUser(ctx context.Context, orgID uuid.UUID, email, name, role, passwordHash string) (*models.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	user := &models.User{}
	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, org_id, email, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, org_id, email, name, role, created_at, last_seen_at
	`, crypto.NewUUIDv7(), orgID, email, name, role).Scan(
		&user.ID,
		&user.OrgID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_credentials (user_id, password_hash)
		VALUES ($1, $2)
	`, user.ID, passwordHash)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *PostgresStore) scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.OrgID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, org_id, email, name, role, created_at, last_seen_at
		FROM users WHERE id = $1
	`, id))
}

// GetUserByEmail retrieves a user by email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, org_id, email, name, role, created_at, last_seen_at
		FROM users WHERE email = $1
	`, email))
}

// GetUserByName retrieves a user within an org by case-insensitive name.
func (s *PostgresStore) GetUserByName(ctx context.Context, orgID uuid.UUID, name string) (*models.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT id, org_id, email, name, role, created_at, last_seen_at
		FROM users WHERE org_id = $1 AND LOWER(name) = LOWER($2)
	`, orgID, name))
}

// ListUsers retrieves all users in an org.
func (s *PostgresStore) ListUsers(ctx context.Context, orgID uuid.UUID) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, org_id, email, name, role, created_at, last_seen_at
		FROM users WHERE org_id = $1
		ORDER BY name
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.OrgID,
			&user.Email,
			&user.Name,
			&user.Role,
			&user.CreatedAt,
			&user.LastSeenAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetCredential retrieves a user's password hash.
func (s *PostgresStore) GetCredential(ctx context.Context, userID uuid.UUID) (string, error) {
	var hash string
	err := s.pool.QueryRow(ctx, `
		SELECT password_hash FROM user_credentials WHERE user_id = $1
	`, userID).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return hash, nil
}

// TouchUserSeen updates a user's last_seen_at timestamp.
func (s *PostgresStore) TouchUserSeen(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET last_seen_at = NOW() WHERE id = $1
	`, id)
	return err
}

// CountUsers returns the total number of users.
func (s *PostgresStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (s *PostgresStore) scanRoom(row pgx.Row) (*models.Room, error) {
	room := &models.Room{}
	err := row.Scan(
		&room.ID,
		&room.OrgID,
		&room.Name,
		&room.ProjectSummary,
		&room.MemorySummary,
		&room.SummaryVersion,
		&room.SummaryUpdates,
		&room.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// CreateRoom creates a new room.
func (s *PostgresStore) CreateRoom(ctx context.Context, orgID uuid.UUID, name string) (*models.Room, error) {
	return s.scanRoom(s.pool.QueryRow(ctx, `
		INSERT INTO rooms (id, org_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, org_id, name, project_summary, memory_summary, summary_version, summary_updates, created_at
	`, crypto.NewUUIDv7(), orgID, name))
}

// GetRoom retrieves a room by ID.
func (s *PostgresStore) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return s.scanRoom(s.pool.QueryRow(ctx, `
		SELECT id, org_id, name, project_summary, memory_summary, summary_version, summary_updates, created_at
		FROM rooms WHERE id = $1
	`, id))
}

// ListRooms retrieves all rooms in an org.
func (s *PostgresStore) ListRooms(ctx context.Context, orgID uuid.UUID) ([]models.Room, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, org_id, name, project_summary, memory_summary, summary_version, summary_updates, created_at
		FROM rooms WHERE org_id = $1
		ORDER BY created_at
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		err := rows.Scan(
			&room.ID,
			&room.OrgID,
			&room.Name,
			&room.ProjectSummary,
			&room.MemorySummary,
			&room.SummaryVersion,
			&room.SummaryUpdates,
			&room.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// UpdateRoomSummary writes both summary fields, bumping the version
// counter. Last write wins across concurrent requests.
func (s *PostgresStore) UpdateRoomSummary(ctx context.Context, id uuid.UUID, summary string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE rooms
		SET project_summary = $2,
		    memory_summary = $2,
		    summary_version = summary_version + 1,
		    summary_updates = summary_updates + 1
		WHERE id = $1
	`, id, summary)
	return err
}

// UpdateRoomOrg reassigns a room to an org (self-healing for org mismatch).
func (s *PostgresStore) UpdateRoomOrg(ctx context.Context, id, orgID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE rooms SET org_id = $2 WHERE id = $1
	`, id, orgID)
	return err
}

// CountRooms returns the total number of rooms.
func (s *PostgresStore) CountRooms(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count)
	return count, err
}

// CreateMessage appends a message to a room's log.
func (s *PostgresStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	fillMessageDefaults(msg)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, room_id, user_id, sender_id, sender_name, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, msg.ID, msg.RoomID, msg.UserID, msg.SenderID, msg.SenderName, msg.Role, msg.Content, msg.CreatedAt)
	return err
}

// ListRoomMessages retrieves the most recent messages in a room,
// returned oldest-first. limit <= 0 returns the full log.
func (s *PostgresStore) ListRoomMessages(ctx context.Context, roomID uuid.UUID, limit int) ([]models.Message, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.pool.Query(ctx, `
			SELECT id, room_id, user_id, sender_id, sender_name, role, content, created_at
			FROM messages WHERE room_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`, roomID, limit)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT id, room_id, user_id, sender_id, sender_name, role, content, created_at
			FROM messages WHERE room_id = $1
			ORDER BY created_at, id
		`, roomID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID,
			&msg.RoomID,
			&msg.UserID,
			&msg.SenderID,
			&msg.SenderName,
			&msg.Role,
			&msg.Content,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if limit > 0 {
		reverseMessages(messages)
	}
	return messages, nil
}

// LatestAssistantMessage returns the most recent assistant-role message
// in a room, or nil if the room has none.
func (s *PostgresStore) LatestAssistantMessage(ctx context.Context, roomID uuid.UUID) (*models.Message, error) {
	msg := &models.Message{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, room_id, user_id, sender_id, sender_name, role, content, created_at
		FROM messages WHERE room_id = $1 AND role = 'assistant'
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, roomID).Scan(
		&msg.ID,
		&msg.RoomID,
		&msg.UserID,
		&msg.SenderID,
		&msg.SenderName,
		&msg.Role,
		&msg.Content,
		&msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

// CountMessages returns the total number of messages.
func (s *PostgresStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// CreateMemoryRecord appends a long-term memory note.
func (s *PostgresStore) CreateMemoryRecord(ctx context.Context, rec *models.MemoryRecord) error {
	fillMemoryDefaults(rec)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO memory_records (id, agent_id, room_id, content, importance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.AgentID, rec.RoomID, rec.Content, rec.Importance, rec.CreatedAt)
	return err
}

// ListAgentMemory retrieves an agent's most recent memory records,
// optionally filtered by room.
func (s *PostgresStore) ListAgentMemory(ctx context.Context, agentID string, roomID *uuid.UUID, limit int) ([]models.MemoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		rows pgx.Rows
		err  error
	)
	if roomID != nil {
		rows, err = s.pool.Query(ctx, `
			SELECT id, agent_id, room_id, content, importance, created_at
			FROM memory_records WHERE agent_id = $1 AND room_id = $2
			ORDER BY created_at DESC
			LIMIT $3
		`, agentID, *roomID, limit)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT id, agent_id, room_id, content, importance, created_at
			FROM memory_records WHERE agent_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		`, agentID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.MemoryRecord
	for rows.Next() {
		var rec models.MemoryRecord
		err := rows.Scan(
			&rec.ID,
			&rec.AgentID,
			&rec.RoomID,
			&rec.Content,
			&rec.Importance,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CreateNotification creates a notification for a user.
func (s *PostgresStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	fillNotificationDefaults(n)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, n.ID, n.UserID, n.Message, n.Read, n.CreatedAt)
	return err
}

// ListNotifications retrieves a user's notifications, newest first.
func (s *PostgresStore) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, message, read, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC
	`
	if unreadOnly {
		query = `
			SELECT id, user_id, message, read, created_at
			FROM notifications WHERE user_id = $1 AND read = FALSE
			ORDER BY created_at DESC
		`
	}
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead toggles a notification's read flag. The user
// scope prevents marking another user's notifications.
func (s *PostgresStore) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2
	`, id, userID)
	return err
}

// CountNotifications returns the total number of notifications.
func (s *PostgresStore) CountNotifications(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&count)
	return count, err
}
