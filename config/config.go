package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/folio/database"
	foliohttp "github.com/sagarc03/folio/http"
	"github.com/sagarc03/folio/s3store"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for folio.
type Config struct {
	Env      string               `mapstructure:"env"`
	Server   ServerConfig         `mapstructure:"server"`
	Database database.Config      `mapstructure:"database"`
	Storage  StorageConfig        `mapstructure:"storage"`
	Auth     AuthConfig           `mapstructure:"auth"`
	CORS     foliohttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig            `mapstructure:"log"`
}

// IsProduction reports whether Env names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize int64 `mapstructure:"max_upload_size" validate:"min=1"`
}

// StorageConfig holds media storage configuration.
type StorageConfig struct {
	Path           string       `mapstructure:"path" validate:"required"`
	Backend        string       `mapstructure:"backend" validate:"required,oneof=local remote"`
	CleanupTimeout int          `mapstructure:"cleanup_timeout" validate:"min=1"`
	Remote         RemoteConfig `mapstructure:"remote"`
}

// RemoteConfig holds the object storage settings used when Backend is remote.
type RemoteConfig struct {
	s3store.Config `mapstructure:",squash"`
	// Timeout bounds each bucket call, in seconds.
	Timeout int `mapstructure:"timeout" validate:"min=1"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	AdminUsername       string `mapstructure:"admin_username" validate:"required"`
	AdminPassword       string `mapstructure:"admin_password"`
	AllowLoginBootstrap bool   `mapstructure:"allow_login_bootstrap"`
	BcryptCost          int    `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":         "database.type",
	"db-dsn":          "database.dsn",
	"storage-path":    "storage.path",
	"storage-backend": "storage.backend",
	"port":            "server.port",
	"log-level":       "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Every key
// gets a default so that AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.max_upload_size", 10<<20)

	v.SetDefault("database.type", "jsonfile")
	v.SetDefault("database.dsn", "folio.json")
	v.SetDefault("database.tables.document", "folio_document")

	v.SetDefault("storage.path", "./uploads")
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.cleanup_timeout", 30) // seconds
	v.SetDefault("storage.remote.bucket", "")
	v.SetDefault("storage.remote.region", "")
	v.SetDefault("storage.remote.access_key", "")
	v.SetDefault("storage.remote.secret_key", "")
	v.SetDefault("storage.remote.endpoint", "")
	v.SetDefault("storage.remote.public_base_url", "")
	v.SetDefault("storage.remote.use_path_style", false)
	v.SetDefault("storage.remote.timeout", 30) // seconds

	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.allow_login_bootstrap", false)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("cors.allowed_methods", []string{})
	v.SetDefault("cors.allowed_headers", []string{})
	v.SetDefault("cors.exposed_headers", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 0)

	v.SetDefault("log.level", "info")
}

// validateStorage rejects a remote backend without a bucket or region.
func validateStorage(sl validator.StructLevel) {
	storage, ok := sl.Current().Interface().(StorageConfig)
	if !ok || storage.Backend != "remote" {
		return
	}
	if storage.Remote.Bucket == "" {
		sl.ReportError(storage.Remote.Bucket, "Remote.Bucket", "bucket", "required_for_remote", "")
	}
	if storage.Remote.Region == "" {
		sl.ReportError(storage.Remote.Region, "Remote.Region", "region", "required_for_remote", "")
	}
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	validate.RegisterStructValidation(validateStorage, StorageConfig{})
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Database.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
