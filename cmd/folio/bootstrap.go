package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/config"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the default admin account",
	Long: `Create the account named by auth.admin_username with the password
from auth.admin_password. Nothing happens when the account already exists.`,
	RunE: runBootstrap,
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	if cfg.Auth.AdminPassword == "" {
		return errors.New("bootstrap: auth.admin_password is not set")
	}

	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	created, err := bootstrapAdmin(ctx, a, cfg)
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "Created admin account %q\n", cfg.Auth.AdminUsername)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Admin account %q already exists\n", cfg.Auth.AdminUsername)
	}
	return nil
}

func bootstrapAdmin(ctx context.Context, a *app, cfg *config.Config) (bool, error) {
	created, err := a.auth.BootstrapDefaultAccount(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		slog.Info("created admin account", "username", cfg.Auth.AdminUsername)
	}
	return created, nil
}
