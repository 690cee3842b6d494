package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	CORS        CORSConfig        `yaml:"cors"`
	Publication PublicationConfig `yaml:"publication"`
	Sweeper     SweeperConfig     `yaml:"sweeper"`
	Trigger     TriggerConfig     `yaml:"trigger"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds storage settings. Driver "memory" keeps everything
// in process and ignores the remaining fields. Migrations are applied on
// start unless SkipMigrations is set.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"             env:"DATABASE_DRIVER"             env-default:"postgres"`
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	SkipMigrations  bool          `yaml:"skip_migrations"    env:"DATABASE_SKIP_MIGRATIONS"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// PublicationConfig holds publication service settings.
type PublicationConfig struct {
	PublishDueTimeout   time.Duration `yaml:"publish_due_timeout"    env:"PUBLICATION_PUBLISH_DUE_TIMEOUT"    env-default:"5s"`
	HistoryLimit        int           `yaml:"history_limit"          env:"PUBLICATION_HISTORY_LIMIT"          env-default:"50"`
	DefaultListLimit    int           `yaml:"default_list_limit"     env:"PUBLICATION_DEFAULT_LIST_LIMIT"     env-default:"50"`
	AuthoringRateLimit  int           `yaml:"authoring_rate_limit"   env:"PUBLICATION_AUTHORING_RATE_LIMIT"   env-default:"120"`
	AuthoringRateBurst  int           `yaml:"authoring_rate_burst"   env:"PUBLICATION_AUTHORING_RATE_BURST"   env-default:"20"`
}

// SweeperConfig holds the server-side backstop sweep settings. The sweeper
// runs unless Disabled is set.
type SweeperConfig struct {
	Disabled bool          `yaml:"disabled" env:"SWEEPER_DISABLED"`
	Schedule string        `yaml:"schedule" env:"SWEEPER_SCHEDULE" env-default:"@every 30s"`
	Timeout  time.Duration `yaml:"timeout"  env:"SWEEPER_TIMEOUT"  env-default:"10s"`
}

// TriggerConfig holds settings for client-side publish triggers.
type TriggerConfig struct {
	BaseURL      string        `yaml:"base_url"      env:"TRIGGER_BASE_URL"      env-default:"http://localhost:8080"`
	TickInterval time.Duration `yaml:"tick_interval" env:"TRIGGER_TICK_INTERVAL" env-default:"1s"`
	CallTimeout  time.Duration `yaml:"call_timeout"  env:"TRIGGER_CALL_TIMEOUT"  env-default:"5s"`
}

// IsMemory reports whether the in-process store is selected.
func (c DatabaseConfig) IsMemory() bool {
	return strings.EqualFold(strings.TrimSpace(c.Driver), DriverMemory)
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)
