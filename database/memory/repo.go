// Package memory implements the user repo in process memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sagarc03/conduit"
)

// Repo keeps users in a map guarded by a RWMutex. Concurrent requests may
// read in parallel; inserts are serialized.
type Repo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]conduit.User
}

// NewRepo returns a repo pre-populated with users.
func NewRepo(users ...conduit.User) *Repo {
	r := &Repo{users: make(map[uuid.UUID]conduit.User, len(users))}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *Repo) Insert(ctx context.Context, u conduit.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.ID]; exists {
		return fmt.Errorf("insert: %w: duplicate id %s", conduit.ErrInvalidInput, u.ID)
	}
	r.users[u.ID] = u
	return nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (conduit.User, error) {
	if err := ctx.Err(); err != nil {
		return conduit.User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return conduit.User{}, conduit.ErrNotFound
	}
	return u, nil
}

func (r *Repo) List(ctx context.Context) ([]conduit.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]conduit.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	return out, nil
}
