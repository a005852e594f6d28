package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/config"
	foliohttp "github.com/sagarc03/folio/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the folio HTTP server.

When auth.admin_password is set the default admin account is created
before the server accepts requests.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 3000, "HTTP server port (env: FOLIO_SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Auth.AdminPassword != "" {
		if _, err = bootstrapAdmin(ctx, a, cfg); err != nil {
			return err
		}
	} else {
		slog.Warn("auth.admin_password not set, skipping admin bootstrap", "admin", cfg.Auth.AdminUsername)
	}

	if cfg.Auth.AllowLoginBootstrap {
		slog.Warn("login bootstrap enabled: a login as the admin account re-creates it when missing",
			"admin", cfg.Auth.AdminUsername)
	}

	handlerConfig := foliohttp.HandlerConfig{
		CORS:          cfg.CORS,
		MaxUploadSize: cfg.Server.MaxUploadSize,
	}
	handler := foliohttp.NewHandler(&handlerConfig, a.service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "backend", cfg.Storage.Backend, "database", cfg.Database.Type)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
