package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/frank"
	"github.com/syssam/frank/config"
	"github.com/syssam/frank/dialect"
)

// clearEnv unsets every variable read by Load for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TYPE", "FILENAME", "HOST", "USER", "PASSWORD", "DATABASE"} {
		t.Setenv(config.EnvPrefix+k, "")
		os.Unsetenv(config.EnvPrefix + k)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Run("SQLite", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_TYPE", "sqlite")
		t.Setenv("DB_FILENAME", "app.db")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, dialect.SQLite, cfg.Type)
		assert.Equal(t, "app.db", cfg.Filename)
		assert.Equal(t, "file:app.db?_pragma=foreign_keys(1)&_time_format=sqlite", cfg.DSN())
		assert.Equal(t, "sqlite:app.db", cfg.String())
	})

	t.Run("MariaDB", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_TYPE", "mariadb")
		t.Setenv("DB_HOST", "db")
		t.Setenv("DB_USER", "root")
		t.Setenv("DB_PASSWORD", "secret")
		t.Setenv("DB_DATABASE", "app")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, dialect.MySQL, cfg.Type)
		assert.Contains(t, cfg.DSN(), "root:secret@tcp(db:3306)/app")
		assert.Contains(t, cfg.DSN(), "parseTime=true")
		assert.Equal(t, "mysql://root:***@db:3306/app", cfg.String())
		assert.NotContains(t, cfg.String(), "secret")
	})

	t.Run("Missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_TYPE", "mysql")
		t.Setenv("DB_USER", "root")

		_, err := config.Load()
		require.Error(t, err)
		assert.True(t, frank.IsConfigurationError(err))
		assert.Contains(t, err.Error(), "DB_PASSWORD, DB_DATABASE")
	})

	t.Run("NoType", func(t *testing.T) {
		clearEnv(t)
		_, err := config.Load()
		assert.True(t, frank.IsConfigurationError(err))
	})
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "frank.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: mysql\nhost: file-host:3307\nuser: file-user\npassword: pw\ndatabase: app\n"), 0o600))
	t.Setenv("DB_USER", "env-user")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("db-database", "", "")
	fs.String("db-password", "", "")
	require.NoError(t, fs.Parse([]string{"--db-database", "flag-db"}))

	cfg, err := config.Load(
		config.WithFile(path),
		config.WithFlags(fs),
		config.WithOverrides(map[string]any{"password": "override"}),
	)
	require.NoError(t, err)
	assert.Equal(t, "file-host:3307", cfg.Host)
	assert.Equal(t, "env-user", cfg.User)
	assert.Equal(t, "flag-db", cfg.Database)
	assert.Equal(t, "override", cfg.Password)
	assert.Contains(t, cfg.DSN(), "tcp(file-host:3307)")
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := config.Load(config.WithFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.True(t, frank.IsConfigurationError(err))
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{Type: "SQLite3"}
	err := cfg.Validate()
	assert.True(t, frank.IsConfigurationError(err))
	cfg.Filename = "x.db"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, dialect.SQLite, cfg.Type)
}
