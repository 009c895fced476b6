// Package config provides configuration loading and validation for conduit.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (CONDUIT_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with CONDUIT_ prefix:
//   - server.port → CONDUIT_SERVER_PORT
//   - server.grace_period → CONDUIT_SERVER_GRACE_PERIOD
//   - database.type → CONDUIT_DATABASE_TYPE
//   - log.file → CONDUIT_LOG_FILE
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env: dev (colored console logs) or prod (JSON logs)
//   - Server: port, max_request_size, grace_period, flush_delay and transport timeouts
//   - Database: type (memory/sqlite/postgres), DSN, table names and seeding
//   - CORS: allowed origins; empty allows any origin
//   - Log: level and optional JSON-lines file
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Database type must be memory, sqlite, or postgres
//   - Durations and sizes must not be negative
//   - Log level must be debug, info, warn, or error
package config
