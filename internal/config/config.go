// Package config loads runtime settings from defaults, an optional config file
// and REGISTRAR_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/and161185/registrar/internal/errs"
)

// Config represents the application configuration.
type Config struct {
	PageSize   int    // students per page
	DBBackend  string // "postgres" or "sqlite"
	DBDSN      string // PostgreSQL DSN
	SQLitePath string
	LogLevel   string
	Migrate    bool // apply pending migrations on startup
}

const envPrefix = "REGISTRAR"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("page_size", 4)
	v.SetDefault("db_backend", "sqlite")
	v.SetDefault("db_dsn", "")
	v.SetDefault("sqlite_path", "registrar.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("migrate", true)
	return v
}

// Load reads configuration. path may be empty; a named file that cannot be read is an error.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		PageSize:   v.GetInt("page_size"),
		DBBackend:  strings.ToLower(v.GetString("db_backend")),
		DBDSN:      v.GetString("db_dsn"),
		SQLitePath: v.GetString("sqlite_path"),
		LogLevel:   v.GetString("log_level"),
		Migrate:    v.GetBool("migrate"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.PageSize < 1 {
		return fmt.Errorf("%w: page_size must be positive, got %d", errs.ErrValidation, c.PageSize)
	}
	switch c.DBBackend {
	case "postgres":
		if c.DBDSN == "" {
			return fmt.Errorf("%w: db_dsn is required for the postgres backend", errs.ErrValidation)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path is required for the sqlite backend", errs.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown db_backend %q", errs.ErrValidation, c.DBBackend)
	}
	return nil
}
