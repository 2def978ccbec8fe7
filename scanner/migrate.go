package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the cache, history and collection tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.DB == nil {
			return errors.New("database not configured or unreachable")
		}
		if err := a.DB.Migrate(cmd.Context()); err != nil {
			return err
		}
		a.Logger.Info().Msg("migrations applied")
		return nil
	},
}
