package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/database"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/repository"
)

func newOperatorCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operator",
		Short: "Manage check-in desk operators",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newOperatorCreateCommand(opts))
	return cmd
}

func newOperatorCreateCommand(opts *rootOptions) *cobra.Command {
	var (
		email    string
		password string
		name     string
		roles    []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an operator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			parsed := make([]models.Role, 0, len(roles))
			for _, r := range roles {
				parsed = append(parsed, models.Role(strings.ToLower(strings.TrimSpace(r))))
			}
			if !models.IsValidRoleList(parsed) {
				return fmt.Errorf("invalid roles %v (want viewer, staff or admin)", roles)
			}

			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			db, err := database.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			op, err := repository.NewOperatorRepository(db).CreateOperator(ctx, email, password, name, parsed)
			if err != nil {
				return fmt.Errorf("create operator: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created operator %s (%s) with roles %v\n", op.Email, op.ID, op.Roles)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringSliceVar(&roles, "role", []string{string(models.RoleStaff)}, "Role tier, repeatable")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
