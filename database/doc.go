// Package database provides a unified interface for connecting to user store backends.
//
// # Supported Backends
//
//   - memory: process-local map, the default; data is lost on restart
//   - sqlite: single-node persistence using modernc.org/sqlite
//   - postgres: shared persistence using a pgx connection pool
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "conduit.db",
//	    Tables: conduit.Tables{Users: "conduit_users"},
//	}
//
//	db, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := db.Validate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	repo := db.GetRepo()
//
// Seed fills an empty store with SeedUsers.
package database
