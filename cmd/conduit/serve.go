package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/conduit"
	"github.com/sagarc03/conduit/config"
	"github.com/sagarc03/conduit/database"
	conduithttp "github.com/sagarc03/conduit/http"
	"github.com/sagarc03/conduit/lifecycle"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the conduit HTTP server. The process exits 0 after a graceful
shutdown and 1 when the listen address is taken, shutdown outlives the grace
period, or a background task fails.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 3003, "HTTP server port")
	serveCmd.Flags().Int64("max-request-size", 1<<20, "maximum request body size in bytes")
	serveCmd.Flags().Duration("grace-period", lifecycle.DefaultGracePeriod, "time allowed for in-flight requests on shutdown")
	serveCmd.Flags().Bool("db-seed", true, "seed an empty user store with demo users")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err = db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err = db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if err = db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}

	repo := db.GetRepo()
	slog.Info("connected to database", "type", cfg.Database.Type)

	if cfg.Database.Seed {
		n, err := database.Seed(ctx, repo, database.SeedUsers())
		if err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
		if n > 0 {
			slog.Info("seeded user store", "users", n)
		}
	}

	service, err := conduit.NewUserService(repo)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}

	guard := lifecycle.New(server, lifecycle.Options{
		GracePeriod: cfg.Server.GracePeriod,
		FlushDelay:  flushDelay(cfg.Server.FlushDelay),
	})

	handler := conduithttp.NewHandler(&conduithttp.HandlerConfig{
		Background: guard,
		StartedAt:  time.Now(),
	}, service)

	pipeline, err := handler.Router(conduithttp.DefaultSteps(conduithttp.SecurityConfig{
		MaxRequestSize: cfg.Server.MaxRequestSize,
		CORS:           cfg.CORS,
	}, slog.Default())...)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	server.Handler = pipeline

	slog.Info("starting server",
		"addr", server.Addr,
		"routes", pipeline.Routes().Len(),
		"max_request_size", cfg.Server.MaxRequestSize,
	)

	code := guard.Run(ctx)

	// deferred closes do not run past os.Exit
	_ = db.Close()
	closeLog()
	os.Exit(code)
	return nil
}

// flushDelay maps a configured zero to "no delay"; lifecycle treats zero as
// its default.
func flushDelay(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}
