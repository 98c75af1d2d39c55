// Command seed provisions a demo workspace: one org, the four team
// members with known passwords, and a starter room. Intended for local
// development only.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Yug-More/Parallel-AI/internal/config"
	"github.com/Yug-More/Parallel-AI/internal/store"
)

const seedPassword = "parallel-dev"

func main() {
	cfg := config.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	if cfg.Env == "production" {
		logger.Fatal().Msg("refusing to seed a production environment")
	}

	ctx := context.Background()

	var db store.DataStore
	if cfg.DatabaseURL != "" {
		if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pgStore.Close()
		db = pgStore
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		defer sqliteStore.Close()
		db = sqliteStore
	}

	org, err := db.GetOrgByName(ctx, "demo")
	if err != nil {
		logger.Fatal().Err(err).Msg("org lookup failed")
	}
	if org == nil {
		org, err = db.CreateOrg(ctx, "demo")
		if err != nil {
			logger.Fatal().Err(err).Msg("org create failed")
		}
		logger.Info().Str("org_id", org.ID.String()).Msg("created demo org")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("password hash failed")
	}

	members := []struct{ name, email string }{
		{"Yug", "yug@parallel.local"},
		{"Sean", "sean@parallel.local"},
		{"Severin", "severin@parallel.local"},
		{"Nayab", "nayab@parallel.local"},
	}
	for _, m := range members {
		existing, err := db.GetUserByEmail(ctx, m.email)
		if err != nil {
			logger.Fatal().Err(err).Msg("user lookup failed")
		}
		if existing != nil {
			continue
		}
		user, err := db.CreateUser(ctx, org.ID, m.email, m.name, "", string(hash))
		if err != nil {
			logger.Fatal().Err(err).Str("email", m.email).Msg("user create failed")
		}
		logger.Info().Str("user_id", user.ID.String()).Str("name", user.Name).Msg("created user")
	}

	rooms, err := db.ListRooms(ctx, org.ID)
	if err != nil {
		logger.Fatal().Err(err).Msg("room list failed")
	}
	if len(rooms) == 0 {
		room, err := db.CreateRoom(ctx, org.ID, "general")
		if err != nil {
			logger.Fatal().Err(err).Msg("room create failed")
		}
		logger.Info().Str("room_id", room.ID.String()).Msg("created general room")
	}

	logger.Info().Str("password", seedPassword).Msg("seed complete")
}
