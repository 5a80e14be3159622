package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	SharePoint SharePointConfig `mapstructure:"sharepoint"`
	Content    ContentConfig    `mapstructure:"content"`
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.SharePoint.partiallySet() {
		return errors.New("sharepoint: tenant_id, client_id, client_secret, site_id, list_id and drive_id must be set together")
	}
	return nil
}

// ServerAddr returns host:port for HTTP server binding.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ServerConfig contains HTTP server options.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig describes the Postgres connection.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// RedisConfig describes the Redis connection.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
}

// AuthConfig contains token and bootstrap secrets.
type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret" validate:"required"`
	TokenTTL    time.Duration `mapstructure:"token_ttl" validate:"required"`
	SetupSecret string        `mapstructure:"setup_secret"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// WorkerConfig sizes the background worker pool.
type WorkerConfig struct {
	Count int `mapstructure:"count" validate:"min=1"`
}

// SharePointConfig holds Microsoft Graph credentials and sync targets.
type SharePointConfig struct {
	TenantID     string        `mapstructure:"tenant_id"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	SiteID       string        `mapstructure:"site_id"`
	ListID       string        `mapstructure:"list_id"`
	DriveID      string        `mapstructure:"drive_id"`
	Folder       string        `mapstructure:"folder"`
	KeyField     string        `mapstructure:"key_field" validate:"required"`
	BatchSize    int           `mapstructure:"batch_size" validate:"min=1"`
	BatchDelay   time.Duration `mapstructure:"batch_delay" validate:"min=0"`
	GraphBaseURL string        `mapstructure:"graph_base_url" validate:"required,url"`
	LoginBaseURL string        `mapstructure:"login_base_url" validate:"required,url"`
}

func (s SharePointConfig) required() []string {
	return []string{s.TenantID, s.ClientID, s.ClientSecret, s.SiteID, s.ListID, s.DriveID}
}

// Enabled reports whether all Graph credentials and targets are configured.
func (s SharePointConfig) Enabled() bool {
	for _, v := range s.required() {
		if v == "" {
			return false
		}
	}
	return true
}

func (s SharePointConfig) partiallySet() bool {
	set := 0
	for _, v := range s.required() {
		if v != "" {
			set++
		}
	}
	return set > 0 && set < len(s.required())
}

// ContentConfig controls marketing content rendering.
type ContentConfig struct {
	DefaultHeroVariant string `mapstructure:"default_hero_variant"`
}
