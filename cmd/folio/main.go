package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sagarc03/folio/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "folio",
	Short:   "Multi-user image gallery server",
	Long: `Folio is a small image gallery backend. Users register, log in,
upload images to their gallery and browse everyone's uploads. Metadata
lives in a single document (JSON file, SQLite or PostgreSQL) and image
bytes on local disk or in an S3-compatible bucket.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("error reading .env file", "err", err)
		}

		var configFiles []string
		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
			configFiles = append(configFiles, configFile)
		}

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: jsonfile, sqlite, postgres (default: jsonfile, env: FOLIO_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database file or connection string (default: folio.json, env: FOLIO_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-path", "", "local media directory (default: ./uploads, env: FOLIO_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("storage-backend", "", "media backend: local, remote (default: local, env: FOLIO_STORAGE_BACKEND)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info, env: FOLIO_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
