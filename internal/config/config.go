package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-ledger/internal/common"
)

// DefaultDatabasePath is used when database.path is not configured.
const DefaultDatabasePath = "$HOME/.local/share/ledger/ledger.db"

// Config holds the resolved application settings.
type Config struct {
	DatabasePath string
	LogLevel     string
	LogFormat    string
	Hasher       string
	BcryptCost   int
	GuardDeletes bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("auth.hasher", "bcrypt")
	v.SetDefault("auth.bcrypt_cost", 0)
	v.SetDefault("categories.guard_deletes", true)
}

// Load reads settings from v, expanding paths and validating values.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		LogLevel:     strings.ToLower(v.GetString("logging.level")),
		LogFormat:    strings.ToLower(v.GetString("logging.format")),
		Hasher:       strings.ToLower(v.GetString("auth.hasher")),
		BcryptCost:   v.GetInt("auth.bcrypt_cost"),
		GuardDeletes: v.GetBool("categories.guard_deletes"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting has a usable value.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: logging.format must be console or json, got %q", common.ErrInvalidConfig, c.LogFormat)
	}

	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.Hasher {
	case "bcrypt", "sha256":
	default:
		return fmt.Errorf("%w: auth.hasher must be bcrypt or sha256, got %q", common.ErrInvalidConfig, c.Hasher)
	}

	if c.BcryptCost < 0 {
		return fmt.Errorf("%w: auth.bcrypt_cost cannot be negative", common.ErrInvalidConfig)
	}

	return nil
}
