package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sagarc03/conduit"
	conduithttp "github.com/sagarc03/conduit/http"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the registered routes",
	RunE:  runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	handler := conduithttp.NewHandler(&conduithttp.HandlerConfig{}, nil)

	table, err := conduit.NewRouteTable(handler.Routes()...)
	if err != nil {
		return fmt.Errorf("build route table: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "METHOD\tPATH")
	for _, route := range table.Routes() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", route.Method, route.Path)
	}
	return w.Flush()
}
