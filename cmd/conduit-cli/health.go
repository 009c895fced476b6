package main

import (
	"os"

	"github.com/spf13/cobra"
)

var healthStatus bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	Long: `Check server health via /api/health.

Examples:
  conduit-cli health
  conduit-cli health --status
  conduit-cli health --json`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthStatus, "status", false, "query /api/status instead")
}

func runHealth(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	fetch := client.Health
	if healthStatus {
		fetch = client.Status
	}

	health, err := fetch(cmd.Context())
	if err != nil {
		return report(err)
	}

	return getFormatter().FormatHealth(os.Stdout, health)
}
