package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	EnvDev  = "dev"
	EnvProd = "prod"

	defaultAddr       = ":8080"
	defaultSessionTTL = 12 * time.Hour
)

// Config holds the application settings.
type Config struct {
	App   AppConfig   `yaml:"app"`
	HTTP  HTTPConfig  `yaml:"http"`
	Store StoreConfig `yaml:"store"`
	Admin AdminConfig `yaml:"admin"`
	Log   LogConfig   `yaml:"log"`
}

type AppConfig struct {
	Env string `yaml:"env"`
	// RefdataPath replaces the embedded season when set.
	RefdataPath string `yaml:"refdata_path"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// StoreConfig selects the persistence backend. With no driver the DSN wins
// over the sqlite path, and memory is used when neither is set.
type StoreConfig struct {
	Driver        string `yaml:"driver"`
	DSN           string `yaml:"dsn"`
	Path          string `yaml:"path"`
	MigrationsDir string `yaml:"migrations_dir"`
}

type AdminConfig struct {
	PasswordHash string        `yaml:"password_hash"`
	JWTSecret    string        `yaml:"jwt_secret"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig loads the configuration from a YAML file and applies
// environment overrides. A missing file means env-only configuration.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config
	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("APP"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("REFDATA_PATH"); v != "" {
		cfg.App.RefdataPath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("POSTGRES_MIGRATIONS_DIR"); v != "" {
		cfg.Store.MigrationsDir = v
	}
	if v := os.Getenv("DB_MIGRATIONS_DIR"); v != "" {
		cfg.Store.MigrationsDir = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		cfg.Admin.PasswordHash = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Admin.JWTSecret = v
	}
	if v := os.Getenv("ADMIN_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ADMIN_SESSION_TTL value: %w", err)
		}
		cfg.Admin.SessionTTL = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.App.Env = strings.ToLower(strings.TrimSpace(c.App.Env))
	if c.App.Env == "" {
		c.App.Env = EnvProd
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		c.HTTP.Addr = defaultAddr
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		switch {
		case strings.TrimSpace(c.Store.DSN) != "":
			c.Store.Driver = DriverPostgres
		case strings.TrimSpace(c.Store.Path) != "":
			c.Store.Driver = DriverSQLite
		default:
			c.Store.Driver = DriverMemory
		}
	}
	if c.Admin.SessionTTL <= 0 {
		c.Admin.SessionTTL = defaultSessionTTL
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return errors.New("config: store.path is required for sqlite")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return errors.New("config: store.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Admin.PasswordHash != "" && c.Admin.JWTSecret == "" {
		return errors.New("config: admin.jwt_secret is required when an admin password is set")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func (c *Config) IsDev() bool  { return c.App.Env == EnvDev }
func (c *Config) IsProd() bool { return c.App.Env == EnvProd }

// AdminEnabled reports whether admin login is configured.
func (c *Config) AdminEnabled() bool {
	return c.Admin.PasswordHash != "" && c.Admin.JWTSecret != ""
}

// SlogLevel returns the configured log level, info by default.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parseLevel(value string) (slog.Level, error) {
	if strings.TrimSpace(value) == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: invalid log level %q", value)
	}
	return level, nil
}
