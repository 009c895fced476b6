package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/conduit"
	"github.com/sagarc03/conduit/database/memory"
	"github.com/sagarc03/conduit/database/postgres"
	"github.com/sagarc03/conduit/database/sqlite"
)

// Database is a connected user store backend.
type Database interface {
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	// Migrate creates the tables the repo needs. It is idempotent.
	Migrate(ctx context.Context) error
	// Validate checks that the existing schema matches what the repo expects.
	Validate(ctx context.Context) error
	// GetRepo returns the user repository backed by this database.
	GetRepo() conduit.UserRepo
	// Close releases the connection.
	Close() error
}

// Config holds the configuration for connecting to a user store backend.
type Config struct {
	// Type specifies the database type: "memory", "sqlite" or "postgres"
	Type string `mapstructure:"type" validate:"required,oneof=memory sqlite postgres"`
	// DSN is the data source name (connection string). Unused by memory.
	DSN string `mapstructure:"dsn"`
	// Tables holds the table names.
	Tables conduit.Tables `mapstructure:"tables"`
	// Seed fills an empty store with SeedUsers on startup.
	Seed bool `mapstructure:"seed"`
}

// Connect opens the configured backend. The caller is responsible for
// Migrate/Validate and for closing the returned Database.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	switch cfg.Type {
	case "memory":
		return memory.Connect(), nil
	case "sqlite":
		return sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
	case "postgres":
		return postgres.Connect(ctx, cfg.DSN, cfg.Tables)
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.Type)
	}
}

// seedEpoch is the creation time of the seeded users.
var seedEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// SeedUsers returns the users a fresh store starts with. IDs are derived
// from the email so seeding is stable across restarts.
func SeedUsers() []conduit.User {
	seed := func(name, email string, offset time.Duration) conduit.User {
		return conduit.User{
			ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)),
			Name:      name,
			Email:     email,
			CreatedAt: seedEpoch.Add(offset),
		}
	}

	return []conduit.User{
		seed("Anna", "anna@example.com", 0),
		seed("Boris", "boris@example.com", time.Second),
	}
}

// Seed inserts users into repo when it is empty. It reports how many users
// were inserted.
func Seed(ctx context.Context, repo conduit.UserRepo, users []conduit.User) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, u := range users {
		if err := repo.Insert(ctx, u); err != nil {
			return i, fmt.Errorf("seed %s: %w", u.Email, err)
		}
	}

	return len(users), nil
}
