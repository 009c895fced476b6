package memory

import (
	"context"

	"github.com/sagarc03/conduit"
)

// Database adapts Repo to the lifecycle of the SQL backends. Migrate and
// Validate have nothing to do.
type Database struct {
	repo *Repo
}

func Connect() *Database {
	return &Database{repo: NewRepo()}
}

func (d *Database) Ping(ctx context.Context) error     { return ctx.Err() }
func (d *Database) Migrate(ctx context.Context) error  { return nil }
func (d *Database) Validate(ctx context.Context) error { return nil }
func (d *Database) Close() error                       { return nil }

func (d *Database) GetRepo() conduit.UserRepo {
	return d.repo
}
