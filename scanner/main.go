// Command scanner runs the product research pipeline locally: an HTTP server
// exposing the same handlers as the Lambdas, one-off searches and schema
// migrations.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"gitlab.connectwisedev.com/product-scanner/pkg/app"
)

var logFormat string

var rootCmd = &cobra.Command{
	Use:           "scanner",
	Short:         "Product research scanner",
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logFormat != "" {
			os.Setenv("LOG_FORMAT", logFormat)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json or console (overrides LOG_FORMAT)")
	rootCmd.AddCommand(serveCmd, searchCmd, migrateCmd)
}

func bootstrap(cmd *cobra.Command) (*app.App, error) {
	return app.Bootstrap(cmd.Context(), "scanner")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
