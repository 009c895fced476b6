package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/sagarc03/conduit/config"
	"github.com/sagarc03/conduit/logsink"
)

// setupLogging installs the default logger. The returned func closes the
// log file, if one was configured.
func setupLogging(cfg *config.Config) (func(), error) {
	isProd := cfg.Env == "prod"
	level := parseLevel(cfg.Log.Level)

	var h slog.Handler
	if isProd {
		h = slog.NewJSONHandler(os.Stdout, jsonOptions(level))
	} else {
		h = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: "15:04:05.000",
		})
	}

	closeFn := func() {}
	if cfg.Log.File != "" {
		sink, err := logsink.OpenFile(cfg.Log.File)
		if err != nil {
			return nil, fmt.Errorf("setup logging: %w", err)
		}
		h = logsink.NewFanout(h, slog.NewJSONHandler(sink, jsonOptions(level)))
		closeFn = func() {
			if err := sink.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "close log file %s: %v\n", sink.Path(), err)
			}
		}
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	log.SetFlags(0)
	log.SetOutput(
		slog.NewLogLogger(
			slog.Default().Handler(),
			slog.LevelInfo,
		).Writer(),
	)

	return closeFn, nil
}

func jsonOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
