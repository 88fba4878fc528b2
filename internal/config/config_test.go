package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"APP", "REFDATA_PATH", "HTTP_ADDR", "STORE_DRIVER", "POSTGRES_DSN", "DB_PATH",
	"POSTGRES_MIGRATIONS_DIR", "DB_MIGRATIONS_DIR", "ADMIN_PASSWORD_HASH", "JWT_SECRET",
	"ADMIN_SESSION_TTL", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, EnvProd, cfg.App.Env)
	assert.True(t, cfg.IsProd())
	assert.False(t, cfg.IsDev(), "dev login stays off unless APP=dev")
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 12*time.Hour, cfg.Admin.SessionTTL)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.False(t, cfg.AdminEnabled())
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
app:
  env: prod
http:
  addr: ":9000"
store:
  driver: sqlite
  path: league.db
  migrations_dir: db/migrations
admin:
  password_hash: "$2a$10$abc"
  jwt_secret: s3cret
  session_ttl: 2h
log:
  level: debug
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, StoreConfig{Driver: DriverSQLite, Path: "league.db", MigrationsDir: "db/migrations"}, cfg.Store)
	assert.Equal(t, 2*time.Hour, cfg.Admin.SessionTTL)
	assert.True(t, cfg.AdminEnabled())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "http:\n  addr: \":9000\"\n")
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("POSTGRES_DSN", "postgres://league@localhost/league")
	t.Setenv("ADMIN_SESSION_TTL", "30m")
	t.Setenv("LOG_LEVEL", "WARN")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver, "dsn selects postgres")
	assert.Equal(t, 30*time.Minute, cfg.Admin.SessionTTL)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad yaml", body: "http: [oops"},
		{name: "unknown driver", body: "store:\n  driver: mongo\n"},
		{name: "sqlite without path", body: "store:\n  driver: sqlite\n"},
		{name: "postgres without dsn", env: map[string]string{"STORE_DRIVER": "postgres"}},
		{name: "password without secret", env: map[string]string{"ADMIN_PASSWORD_HASH": "$2a$10$abc"}},
		{name: "bad ttl", env: map[string]string{"ADMIN_SESSION_TTL": "soon"}},
		{name: "bad level", body: "log:\n  level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
