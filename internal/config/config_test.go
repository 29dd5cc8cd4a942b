package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".local/share/ledger/ledger.db"), cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "bcrypt", cfg.Hasher)
	assert.Zero(t, cfg.BcryptCost)
	assert.True(t, cfg.GuardDeletes)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `database:
  path: ` + filepath.Join(dir, "custom.db") + `
logging:
  level: DEBUG
  format: json
auth:
  hasher: sha256
categories:
  guard_deletes: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom.db"), cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "sha256", cfg.Hasher)
	assert.False(t, cfg.GuardDeletes)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		want  error
		name  string
		key   string
		value any
	}{
		{name: "empty database path", key: "database.path", value: "", want: common.ErrMissingConfig},
		{name: "bad log format", key: "logging.format", value: "xml", want: common.ErrInvalidConfig},
		{name: "bad log level", key: "logging.level", value: "loud", want: common.ErrInvalidConfig},
		{name: "bad hasher", key: "auth.hasher", value: "md5", want: common.ErrInvalidConfig},
		{name: "negative cost", key: "auth.bcrypt_cost", value: -1, want: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("LEDGER_TEST_DIR", "/srv/ledger")

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "~", want: home},
		{input: "~/ledger.db", want: filepath.Join(home, "ledger.db")},
		{input: "$LEDGER_TEST_DIR/ledger.db", want: "/srv/ledger/ledger.db"},
		{input: "/abs/ledger.db", want: "/abs/ledger.db"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/ledger", dir)

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	dir, err = ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "ledger"), dir)
}
