package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Ingest   IngestConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Address  string
	Port     int
	HTTPPort int
	LogLevel string
	LogJSON  bool
}

// GRPCAddr returns the listen address for the gRPC server.
func (s ServerConfig) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// HTTPAddr returns the listen address for the JSON API server.
func (s ServerConfig) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.HTTPPort)
}

// IngestConfig holds drop-directory import configuration. An empty WatchDir
// disables the watcher.
type IngestConfig struct {
	WatchDir string
	Debounce time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Engine           string
	Path             string
	URL              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// LoadConfig loads configuration in three layers: built-in defaults, an
// optional config/ledger-backend.toml file, then LEDGER_BACKEND_* environment
// variables (highest precedence).
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("ledger-backend")
	v.SetConfigType("toml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LEDGER_BACKEND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// Missing config file is fine, defaults plus env cover everything.
	}

	cfg := configFromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "127.0.0.1")
	v.SetDefault("server.port", 50059)
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.log_level", "warn")
	v.SetDefault("server.log_json", false)

	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.path", "data/personal_ledger.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("database.dial_timeout", 3*time.Second)
	v.SetDefault("database.statement_timeout", time.Duration(0))

	v.SetDefault("ingest.watch_dir", "")
	v.SetDefault("ingest.debounce", 500*time.Millisecond)
}

func configFromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Address:  v.GetString("server.address"),
			Port:     v.GetInt("server.port"),
			HTTPPort: v.GetInt("server.http_port"),
			LogLevel: strings.ToLower(v.GetString("server.log_level")),
			LogJSON:  v.GetBool("server.log_json"),
		},
		Database: DatabaseConfig{
			Engine:           strings.ToLower(v.GetString("database.engine")),
			Path:             v.GetString("database.path"),
			URL:              v.GetString("database.url"),
			MaxConns:         v.GetInt32("database.max_conns"),
			MinConns:         v.GetInt32("database.min_conns"),
			MaxConnLifetime:  v.GetDuration("database.max_conn_lifetime"),
			MaxConnIdleTime:  v.GetDuration("database.max_conn_idle_time"),
			DialTimeout:      v.GetDuration("database.dial_timeout"),
			StatementTimeout: v.GetDuration("database.statement_timeout"),
		},
		Ingest: IngestConfig{
			WatchDir: v.GetString("ingest.watch_dir"),
			Debounce: v.GetDuration("ingest.debounce"),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("server.port", c.Server.Port, Range(1, 65535))
	v.Field("server.http_port", c.Server.HTTPPort, Range(1, 65535))
	v.Field("server.log_level", c.Server.LogLevel, OneOf("debug", "info", "warn", "error"))
	v.Field("database.engine", c.Database.Engine, OneOf("sqlite", "postgres"))

	switch c.Database.Engine {
	case "sqlite":
		v.Field("database.path", c.Database.Path, Required)
	case "postgres":
		v.Field("database.url", c.Database.URL, Required)
	}

	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
