package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var calcCmd = &cobra.Command{
	Use:   "calc <x> <y>",
	Short: "Run the server-side calculator",
	Long: `Ask the server for the sum, difference, product and quotient of x and y.

Examples:
  conduit-cli calc 6 3
  conduit-cli calc 1 0`,
	Args: cobra.ExactArgs(2),
	RunE: runCalc,
}

func runCalc(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("parse x: %w", err)
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("parse y: %w", err)
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.Calc(cmd.Context(), x, y)
	if err != nil {
		return report(err)
	}

	return getFormatter().FormatCalc(os.Stdout, result)
}
