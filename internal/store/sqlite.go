package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Yug-More/Parallel-AI/internal/crypto"
	"github.com/Yug-More/Parallel-AI/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the development
// fallback when DATABASE_URL is unset and implements the same DataStore
// interface as PostgresStore.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/parallel.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/parallel.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS orgs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		role TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS user_credentials (
		user_id TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		name TEXT NOT NULL,
		project_summary TEXT DEFAULT '',
		memory_summary TEXT DEFAULT '',
		summary_version INTEGER DEFAULT 0,
		summary_updates INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		room_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		sender_name TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS memory_records (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		room_id TEXT,
		content TEXT NOT NULL,
		importance REAL DEFAULT 0.3,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		message TEXT NOT NULL,
		read INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_org ON users(org_id);
	CREATE INDEX IF NOT EXISTS idx_messages_room_time ON messages(room_id, created_at, id);
	CREATE INDEX IF NOT EXISTS idx_memory_agent ON memory_records(agent_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, read);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateOrg creates a new organization.
func (s *SQLiteStore) CreateOrg(ctx context.Context, name string) (*models.Org, error) {
	id := crypto.NewUUIDv7()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orgs (id, name, created_at) VALUES (?, ?, ?)
	`, id.String(), name, now)
	if err != nil {
		return nil, err
	}
	return &models.Org{ID: id, Name: name, CreatedAt: now}, nil
}

// GetOrg retrieves an organization by ID.
func (s *SQLiteStore) GetOrg(ctx context.Context, id uuid.UUID) (*models.Org, error) {
	org := &models.Org{}
	var idStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM orgs WHERE id = ?
	`, id.String()).Scan(&idStr, &org.Name, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	org.ID = uuid.MustParse(idStr)
	return org, nil
}

// GetOrgByName retrieves an organization by case-insensitive name.
func (s *SQLiteStore) GetOrgByName(ctx context.Context, name string) (*models.Org, error) {
	org := &models.Org{}
	var idStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM orgs WHERE LOWER(name) = LOWER(?)
	`, name).Scan(&idStr, &org.Name, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	org.ID = uuid.MustParse(idStr)
	return org, nil
}

// CreateUser creates a user and its credential row in one transaction.
func (s *SQLiteStore) CreateUser(ctx context.Context, orgID uuid.UUID, email, name, role, passwordHash string) (*models.User, error) {
	id := crypto.NewUUIDv7()
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, org_id, email, name, role, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id.String(), orgID.String(), email, name, role, now, now)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_credentials (user_id, password_hash, created_at)
		VALUES (?, ?, ?)
	`, id.String(), passwordHash, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &models.User{
		ID:         id,
		OrgID:      orgID,
		Email:      email,
		Name:       name,
		Role:       role,
		CreatedAt:  now,
		LastSeenAt: now,
	}, nil
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var idStr, orgStr string
	err := row.Scan(
		&idStr,
		&orgStr,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.ID = uuid.MustParse(idStr)
	user.OrgID = uuid.MustParse(orgStr)
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, org_id, email, name, role, created_at, last_seen_at
		FROM users WHERE id = ?
	`, id.String()))
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, org_id, email, name, role, created_at, last_seen_at
		FROM users WHERE email = ?
	`, email))
}

// GetUserByName retrieves a user within an org by case-insensitive name.
func (s *SQLiteStore) GetUserByName(ctx context.Context, orgID uuid.UUID, name string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, org_id, email, name, role, created_at, last_seen_at
		FROM users WHERE org_id = ? AND LOWER(name) = LOWER(?)
	`, orgID.String(), name))
}

// ListUsers retrieves all users in an org.
func (s *SQLiteStore) ListUsers(ctx context.Context, orgID uuid.UUID) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, email, name, role, created_at, last_seen_at
		FROM users WHERE org_id = ?
		ORDER BY name
	`, orgID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		var idStr, orgStr string
		err := rows.Scan(
			&idStr,
			&orgStr,
			&user.Email,
			&user.Name,
			&user.Role,
			&user.CreatedAt,
			&user.LastSeenAt,
		)
		if err != nil {
			return nil, err
		}
		user.ID = uuid.MustParse(idStr)
		user.OrgID = uuid.MustParse(orgStr)
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetCredential retrieves a user's password hash.
func (s *SQLiteStore) GetCredential(ctx context.Context, userID uuid.UUID) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT password_hash FROM user_credentials WHERE user_id = ?
	`, userID.String()).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return hash, nil
}

// TouchUserSeen updates a user's last_seen_at timestamp.
func (s *SQLiteStore) TouchUserSeen(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET last_seen_at = ? WHERE id = ?
	`, time.Now().UTC(), id.String())
	return err
}

// CountUsers returns the total number of users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func scanSQLiteRoom(scan func(dest ...any) error) (*models.Room, error) {
	room := &models.Room{}
	var idStr, orgStr string
	err := scan(
		&idStr,
		&orgStr,
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
	room.ID = uuid.MustParse(idStr)
	room.OrgID = uuid.MustParse(orgStr)
	return room, nil
}

// CreateRoom creates a new room.
func (s *SQLiteStore) CreateRoom(ctx context.Context, orgID uuid.UUID, name string) (*models.Room, error) {
	id := crypto.NewUUIDv7()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, org_id, name, created_at) VALUES (?, ?, ?, ?)
	`, id.String(), orgID.String(), name, now)
	if err != nil {
		return nil, err
	}
	return &models.Room{ID: id, OrgID: orgID, Name: name, CreatedAt: now}, nil
}

// GetRoom retrieves a room by ID.
func (s *SQLiteStore) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, name, project_summary, memory_summary, summary_version, summary_updates, created_at
		FROM rooms WHERE id = ?
	`, id.String())
	room, err := scanSQLiteRoom(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// ListRooms retrieves all rooms in an org.
func (s *SQLiteStore) ListRooms(ctx context.Context, orgID uuid.UUID) ([]models.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, name, project_summary, memory_summary, summary_version, summary_updates, created_at
		FROM rooms WHERE org_id = ?
		ORDER BY created_at
	`, orgID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		room, err := scanSQLiteRoom(rows.Scan)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *room)
	}
	return rooms, rows.Err()
}

// UpdateRoomSummary writes both summary fields, bumping the version counter.
func (s *SQLiteStore) UpdateRoomSummary(ctx context.Context, id uuid.UUID, summary string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE rooms
		SET project_summary = ?,
		    memory_summary = ?,
		    summary_version = summary_version + 1,
		    summary_updates = summary_updates + 1
		WHERE id = ?
	`, summary, summary, id.String())
	return err
}

// UpdateRoomOrg reassigns a room to an org.
func (s *SQLiteStore) UpdateRoomOrg(ctx context.Context, id, orgID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE rooms SET org_id = ? WHERE id = ?
	`, orgID.String(), id.String())
	return err
}

// CountRooms returns the total number of rooms.
func (s *SQLiteStore) CountRooms(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count)
	return count, err
}

// CreateMessage appends a message to a room's log.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *models.Message) error {
	fillMessageDefaults(msg)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, room_id, user_id, sender_id, sender_name, role, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.RoomID.String(), msg.UserID.String(), msg.SenderID, msg.SenderName, msg.Role, msg.Content, msg.CreatedAt)
	return err
}

func scanSQLiteMessage(scan func(dest ...any) error) (*models.Message, error) {
	msg := &models.Message{}
	var roomStr, userStr string
	err := scan(
		&msg.ID,
		&roomStr,
		&userStr,
		&msg.SenderID,
		&msg.SenderName,
		&msg.Role,
		&msg.Content,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	msg.RoomID = uuid.MustParse(roomStr)
	msg.UserID = uuid.MustParse(userStr)
	return msg, nil
}

// ListRoomMessages retrieves the most recent messages in a room,
// returned oldest-first. limit <= 0 returns the full log.
func (s *SQLiteStore) ListRoomMessages(ctx context.Context, roomID uuid.UUID, limit int) ([]models.Message, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, room_id, user_id, sender_id, sender_name, role, content, created_at
			FROM messages WHERE room_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		`, roomID.String(), limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, room_id, user_id, sender_id, sender_name, role, content, created_at
			FROM messages WHERE room_id = ?
			ORDER BY created_at, id
		`, roomID.String())
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		msg, err := scanSQLiteMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
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
func (s *SQLiteStore) LatestAssistantMessage(ctx context.Context, roomID uuid.UUID) (*models.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, room_id, user_id, sender_id, sender_name, role, content, created_at
		FROM messages WHERE room_id = ? AND role = 'assistant'
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, roomID.String())
	msg, err := scanSQLiteMessage(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

// CountMessages returns the total number of messages.
func (s *SQLiteStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// CreateMemoryRecord appends a long-term memory note.
func (s *SQLiteStore) CreateMemoryRecord(ctx context.Context, rec *models.MemoryRecord) error {
	fillMemoryDefaults(rec)
	var roomStr *string
	if rec.RoomID != nil {
		str := rec.RoomID.String()
		roomStr = &str
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memory_records (id, agent_id, room_id, content, importance, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID.String(), rec.AgentID, roomStr, rec.Content, rec.Importance, rec.CreatedAt)
	return err
}

// ListAgentMemory retrieves an agent's most recent memory records,
// optionally filtered by room.
func (s *SQLiteStore) ListAgentMemory(ctx context.Context, agentID string, roomID *uuid.UUID, limit int) ([]models.MemoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		rows *sql.Rows
		err  error
	)
	if roomID != nil {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, agent_id, room_id, content, importance, created_at
			FROM memory_records WHERE agent_id = ? AND room_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		`, agentID, roomID.String(), limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, agent_id, room_id, content, importance, created_at
			FROM memory_records WHERE agent_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		`, agentID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.MemoryRecord
	for rows.Next() {
		var rec models.MemoryRecord
		var idStr string
		var roomStr *string
		err := rows.Scan(
			&idStr,
			&rec.AgentID,
			&roomStr,
			&rec.Content,
			&rec.Importance,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rec.ID = uuid.MustParse(idStr)
		if roomStr != nil {
			room := uuid.MustParse(*roomStr)
			rec.RoomID = &room
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CreateNotification creates a notification for a user.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	fillNotificationDefaults(n)
	readInt := 0
	if n.Read {
		readInt = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, message, read, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, n.ID.String(), n.UserID.String(), n.Message, readInt, n.CreatedAt)
	return err
}

// ListNotifications retrieves a user's notifications, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, message, read, created_at
		FROM notifications WHERE user_id = ?
		ORDER BY created_at DESC
	`
	if unreadOnly {
		query = `
			SELECT id, user_id, message, read, created_at
			FROM notifications WHERE user_id = ? AND read = 0
			ORDER BY created_at DESC
		`
	}
	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		var idStr, userStr string
		var readInt int
		err := rows.Scan(&idStr, &userStr, &n.Message, &readInt, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		n.ID = uuid.MustParse(idStr)
		n.UserID = uuid.MustParse(userStr)
		n.Read = readInt == 1
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead toggles a notification's read flag.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?
	`, id.String(), userID.String())
	return err
}

// CountNotifications returns the total number of notifications.
func (s *SQLiteStore) CountNotifications(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&count)
	return count, err
}
