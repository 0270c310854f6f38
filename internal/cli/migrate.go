package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/caerus-app/caerus-backend/internal/repo"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := repo.AutoMigrate(a.db.WithContext(cmd.Context())); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables (%s)\n", len(repo.Models()), a.cfg.DBDriver)
			return err
		},
	}
}

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin access",
	}
	cmd.AddCommand(
		newAdminSetCmd("grant", "Grant admin access to the user with EMAIL", true),
		newAdminSetCmd("revoke", "Revoke admin access from the user with EMAIL", false),
	)
	return cmd
}

func newAdminSetCmd(use, short string, admin bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " EMAIL",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.ToLower(strings.TrimSpace(args[0]))
			if email == "" {
				return errors.New("email must not be empty")
			}

			a, err := wireApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := repo.SetAdmin(cmd.Context(), a.db, email, admin); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return fmt.Errorf("no user with email %q", email)
				}
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: admin=%t\n", email, admin)
			return err
		},
	}
}

func newPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-idempotency",
		Short: "Delete expired Idempotency-Key records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := repo.PurgeExpiredIdempotency(cmd.Context(), a.db, time.Now())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired keys\n", n)
			return err
		},
	}
}
