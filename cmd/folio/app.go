package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sagarc03/folio"
	"github.com/sagarc03/folio/config"
	"github.com/sagarc03/folio/database"
	"github.com/sagarc03/folio/filesystem"
	"github.com/sagarc03/folio/s3store"
)

// app holds the wired components shared by the subcommands.
type app struct {
	auth    *folio.AuthService
	service *folio.Service
	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	repo, closeDB, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.closers = append(a.closers, closeDB)
	slog.Info("connected to database", "type", cfg.Database.Type)

	storage, closeStorage, err := filesystem.Open(cfg.Storage.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.closers = append(a.closers, closeStorage)

	media, err := newMediaStore(ctx, cfg, storage)
	if err != nil {
		a.Close()
		return nil, err
	}

	store := folio.NewDataStore(repo)
	a.auth = folio.NewAuthService(store, folio.AuthConfig{
		AdminUsername:       cfg.Auth.AdminUsername,
		AdminPassword:       cfg.Auth.AdminPassword,
		AllowLoginBootstrap: cfg.Auth.AllowLoginBootstrap,
		BcryptCost:          cfg.Auth.BcryptCost,
	})
	catalog := folio.NewGalleryCatalog(store, a.auth.IsAdmin)

	a.service, err = folio.NewService(a.auth, catalog, media, folio.ServiceConfig{
		CleanupTimeout: time.Duration(cfg.Storage.CleanupTimeout) * time.Second,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create service: %w", err)
	}

	return a, nil
}

func newMediaStore(ctx context.Context, cfg *config.Config, storage folio.FileStorage) (folio.MediaStore, error) {
	backend, err := folio.ParseMediaBackend(cfg.Storage.Backend)
	if err != nil {
		return nil, err
	}

	if backend == folio.BackendLocal {
		slog.Info("using local media storage", "path", cfg.Storage.Path)
		return folio.NewLocalMedia(storage), nil
	}

	bucket, err := s3store.New(ctx, cfg.Storage.Remote.Config)
	if err != nil {
		return nil, fmt.Errorf("connect bucket: %w", err)
	}
	slog.Info("using remote media storage",
		"bucket", cfg.Storage.Remote.Bucket,
		"region", cfg.Storage.Remote.Region,
	)

	timeout := time.Duration(cfg.Storage.Remote.Timeout) * time.Second
	return folio.NewRemoteMedia(storage, bucket, timeout), nil
}
