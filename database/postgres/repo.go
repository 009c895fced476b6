// Package postgres implements the user repo interface using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/conduit"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables conduit.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: tables.Users}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) table() string {
	return pgx.Identifier{r.tableName}.Sanitize()
}

func (r *Repo) Insert(ctx context.Context, u conduit.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
	`, r.table())

	_, err := r.pool.Exec(ctx, query, u.ID, u.Name, u.Email, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert: %w: duplicate id %s", conduit.ErrInvalidInput, u.ID)
		}
		return fmt.Errorf("insert: %w", err)
	}

	return nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (conduit.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, created_at
		FROM %s
		WHERE id = $1
	`, r.table())

	var u conduit.User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return conduit.User{}, conduit.ErrNotFound
		}
		return conduit.User{}, fmt.Errorf("get: %w", err)
	}

	return u, nil
}

func (r *Repo) List(ctx context.Context) ([]conduit.User, error) {
	query := fmt.Sprintf(`
		SELECT id, name, email, created_at
		FROM %s
		ORDER BY created_at, id
	`, r.table())

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	users := []conduit.User{}
	for rows.Next() {
		var u conduit.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return users, nil
}
