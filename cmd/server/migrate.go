package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/database"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/migration"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect database migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			db, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			switch action {
			case "up":
				if err := migration.RunMigrations(ctx, db, logger); err != nil {
					return err
				}
			case "down":
				if err := migration.Rollback(ctx, db, logger); err != nil {
					return err
				}
			case "status":
				return migration.Status(ctx, db, logger)
			default:
				return fmt.Errorf("unknown migrate action %q", action)
			}

			version, err := migration.Version(ctx, db, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
	return cmd
}
