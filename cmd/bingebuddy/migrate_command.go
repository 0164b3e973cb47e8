package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bingebuddy/bingebuddy/internal/database"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	open := func(cmd *cobra.Command) (*database.DB, error) {
		db, err := database.New(cmd.Context(), ctx.config.Database.Path)
		if err != nil {
			return nil, err
		}
		ctx.db = db
		return db, nil
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open(cmd)
			if err != nil {
				return err
			}
			n, err := db.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", n)
			return nil
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open(cmd)
			if err != nil {
				return err
			}
			if err := db.MigrateDown(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rolled back one migration")
			return nil
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open(cmd)
			if err != nil {
				return err
			}
			states, err := db.MigrationStatus(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(states))
			for _, s := range states {
				rows = append(rows, []string{fmt.Sprint(s.Version), s.Source, yesNo(s.Applied)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Version", "Source", "Applied"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	})

	return migrateCmd
}
