// Package config provides configuration loading and validation for folio.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (FOLIO_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with FOLIO_ prefix:
//   - server.port → FOLIO_SERVER_PORT
//   - database.type → FOLIO_DATABASE_TYPE
//   - auth.admin_password → FOLIO_AUTH_ADMIN_PASSWORD
//   - storage.remote.bucket → FOLIO_STORAGE_REMOTE_BUCKET
//
// # Configuration Structure
//
// The Config struct contains:
//   - Env: dev or prod; prod switches logging to JSON
//   - Server: port and max_upload_size
//   - Database: jsonfile, sqlite or postgres, DSN and table names
//   - Storage: local media path, backend (local/remote), cleanup_timeout and
//     the remote bucket settings
//   - Auth: default admin account, login bootstrap allowance and bcrypt cost
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Database type must be jsonfile, sqlite or postgres
//   - Storage backend must be local or remote; remote requires bucket and region
//   - Bcrypt cost must be 4-31
//   - Log level must be debug, info, warn, or error
package config
