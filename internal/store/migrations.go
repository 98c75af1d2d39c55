package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// postgresSchema creates tables if they don't exist. Summary columns are
// empty (not NULL) initially; summary_version is the optimistic hook for
// callers needing stronger guarantees than last-write-wins.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS orgs (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	org_id UUID NOT NULL REFERENCES orgs(id),
	email TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_credentials (
	user_id UUID PRIMARY KEY REFERENCES users(id),
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS rooms (
	id UUID PRIMARY KEY,
	org_id UUID NOT NULL REFERENCES orgs(id),
	name TEXT NOT NULL,
	project_summary TEXT NOT NULL DEFAULT '',
	memory_summary TEXT NOT NULL DEFAULT '',
	summary_version BIGINT NOT NULL DEFAULT 0,
	summary_updates BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	room_id UUID NOT NULL REFERENCES rooms(id),
	user_id UUID NOT NULL,
	sender_id TEXT NOT NULL,
	sender_name TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS memory_records (
	id UUID PRIMARY KEY,
	agent_id TEXT NOT NULL,
	room_id UUID,
	content TEXT NOT NULL,
	importance DOUBLE PRECISION NOT NULL DEFAULT 0.3,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS notifications (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id),
	message TEXT NOT NULL,
	read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE INDEX IF NOT EXISTS idx_users_org ON users(org_id);
CREATE INDEX IF NOT EXISTS idx_messages_room_time ON messages(room_id, created_at, id);
CREATE INDEX IF NOT EXISTS idx_memory_agent ON memory_records(agent_id, created_at);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, read);
`

// RunMigrations applies the schema to the PostgreSQL database.
func RunMigrations(databaseURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, postgresSchema)
	return err
}
