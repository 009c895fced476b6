package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/conduit"
	"github.com/sagarc03/conduit/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepo()

	u := conduit.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", CreatedAt: time.Now()}
	require.NoError(t, repo.Insert(ctx, u))

	got, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestRepo_GetMissing(t *testing.T) {
	repo := memory.NewRepo()

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, conduit.ErrNotFound)
}

func TestRepo_InsertDuplicateID(t *testing.T) {
	ctx := context.Background()
	u := conduit.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
	repo := memory.NewRepo(u)

	err := repo.Insert(ctx, u)
	assert.ErrorIs(t, err, conduit.ErrInvalidInput)
}

func TestRepo_ListOrderedByCreation(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := conduit.User{ID: uuid.New(), Name: "first", Email: "1@example.com", CreatedAt: base}
	second := conduit.User{ID: uuid.New(), Name: "second", Email: "2@example.com", CreatedAt: base.Add(time.Second)}
	repo := memory.NewRepo(second, first)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "first", users[0].Name)
	assert.Equal(t, "second", users[1].Name)
}

func TestRepo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := memory.NewRepo()
	assert.ErrorIs(t, repo.Insert(ctx, conduit.User{ID: uuid.New()}), context.Canceled)
	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRepo_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepo()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Insert(ctx, conduit.User{ID: uuid.New(), Name: "n", Email: "e"})
			_, _ = repo.List(ctx)
		}()
	}
	wg.Wait()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 50)
}
