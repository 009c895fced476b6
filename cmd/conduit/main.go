package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/conduit/config"
	"github.com/sagarc03/conduit/lifecycle"
)

var version = "dev"

// closeLog releases the log file sink, if any. Set by PersistentPreRunE.
var closeLog = func() {}

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "conduit",
	Short:   "HTTP server with a middleware pipeline and graceful lifecycle",
	Long: `Conduit serves a small JSON API through an ordered middleware chain
(security, request id, logging, body parsing) and an exact-match router,
with graceful shutdown and crash containment around the process.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var configFiles []string
		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
			configFiles = append(configFiles, configFile)
		}

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		closeLog, err = setupLogging(cfg)
		if err != nil {
			return err
		}

		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: memory, sqlite, postgres (default: memory, env: CONDUIT_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: conduit.db, env: CONDUIT_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: CONDUIT_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-file", "", "append JSON log lines to this file (env: CONDUIT_LOG_FILE)")
}

func main() {
	defer lifecycle.Contain(nil, lifecycle.DefaultFlushDelay)

	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		os.Exit(lifecycle.ExitFailure)
	}
}
