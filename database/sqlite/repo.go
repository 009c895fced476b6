// Package sqlite implements the user repo interface using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/conduit"
)

// timeFormat is fixed width so that text comparison orders by time.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

type Repo struct {
	db        *sql.DB
	tableName string
}

func NewRepo(db *sql.DB, tables conduit.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{db: db, tableName: quoteIdentifier(tables.Users)}, nil
}

func (r *Repo) Insert(ctx context.Context, u conduit.User) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, name, email, created_at) VALUES (?, ?, ?, ?)`, r.tableName)

	_, err := r.db.ExecContext(ctx, query,
		u.ID.String(), u.Name, u.Email, u.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert: %w: duplicate id %s", conduit.ErrInvalidInput, u.ID)
		}
		return fmt.Errorf("insert: %w", err)
	}

	return nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (conduit.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, name, email, created_at FROM %s WHERE id = ?`, r.tableName)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return conduit.User{}, conduit.ErrNotFound
		}
		return conduit.User{}, fmt.Errorf("get: %w", err)
	}

	return u, nil
}

func (r *Repo) List(ctx context.Context) ([]conduit.User, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT id, name, email, created_at FROM %s ORDER BY created_at, id`, r.tableName)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := []conduit.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return users, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (conduit.User, error) {
	var u conduit.User
	var idStr, createdAt string

	if err := s.Scan(&idStr, &u.Name, &u.Email, &createdAt); err != nil {
		return conduit.User{}, err
	}

	var err error
	u.ID, err = uuid.Parse(idStr)
	if err != nil {
		return conduit.User{}, fmt.Errorf("parse uuid: %w", err)
	}

	u.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return conduit.User{}, fmt.Errorf("parse created_at: %w", err)
	}

	return u, nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
