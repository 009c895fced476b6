package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sagarc03/conduit"
	"github.com/sagarc03/conduit/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T, cfg database.Config) database.Database {
	t.Helper()
	ctx := context.Background()

	db, err := database.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Ping(ctx))
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Validate(ctx))

	return db
}

func TestConnect_Backends(t *testing.T) {
	tests := []struct {
		name string
		cfg  database.Config
	}{
		{"memory", database.Config{Type: "memory"}},
		{"sqlite", database.Config{Type: "sqlite", DSN: ":memory:", Tables: conduit.Tables{Users: "users"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := setupTestDB(t, tt.cfg).GetRepo()

			u := conduit.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
			require.NoError(t, repo.Insert(ctx, u))

			users, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, users, 1)
			assert.Equal(t, u.ID, users[0].ID)
		})
	}
}

func TestConnect_InvalidType(t *testing.T) {
	for _, typ := range []string{"invalid", ""} {
		_, err := database.Connect(context.Background(), database.Config{Type: typ, DSN: "whatever"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database type")
	}
}

func TestConnect_SQLiteInvalidTable(t *testing.T) {
	_, err := database.Connect(context.Background(), database.Config{
		Type:   "sqlite",
		DSN:    ":memory:",
		Tables: conduit.Tables{Users: "drop table;"},
	})
	assert.Error(t, err)
}

func TestSeedUsers_Stable(t *testing.T) {
	a := database.SeedUsers()
	b := database.SeedUsers()

	require.Len(t, a, 2)
	assert.Equal(t, a, b)
	assert.Equal(t, "Anna", a[0].Name)
	assert.Equal(t, "boris@example.com", a[1].Email)
	assert.True(t, a[0].CreatedAt.Before(a[1].CreatedAt))
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	repo := setupTestDB(t, database.Config{Type: "sqlite", DSN: ":memory:", Tables: conduit.Tables{Users: "users"}}).GetRepo()

	n, err := database.Seed(ctx, repo, database.SeedUsers())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// a populated store is left alone
	n, err = database.Seed(ctx, repo, database.SeedUsers())
	require.NoError(t, err)
	assert.Zero(t, n)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Anna", users[0].Name)
}

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) Insert(ctx context.Context, u conduit.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockRepo) Get(ctx context.Context, id uuid.UUID) (conduit.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(conduit.User), args.Error(1)
}

func (m *MockRepo) List(ctx context.Context) ([]conduit.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]conduit.User), args.Error(1)
}

func TestSeed_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("list fails", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("List", mock.Anything).Return([]conduit.User(nil), errors.New("down"))

		_, err := database.Seed(ctx, repo, database.SeedUsers())
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("insert fails", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("List", mock.Anything).Return([]conduit.User{}, nil)
		repo.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

		n, err := database.Seed(ctx, repo, database.SeedUsers())
		assert.Error(t, err)
		assert.Equal(t, 1, n)
	})
}
