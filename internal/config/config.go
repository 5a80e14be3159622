// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read when present; variables already set in the process win.
const DefaultEnvFile = ".env"

// Load reads configuration from the environment (and envFile, if it exists),
// applies defaults and validates the result.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if envMap, err := godotenv.Read(envFile); err == nil {
			for k, val := range envMap {
				if _, exists := os.LookupEnv(k); !exists {
					_ = os.Setenv(k, val)
				}
			}
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("worker.count", 1)

	v.SetDefault("sharepoint.folder", "Buildings")
	v.SetDefault("sharepoint.batch_size", 20)
	v.SetDefault("sharepoint.batch_delay", time.Second)
	v.SetDefault("sharepoint.graph_base_url", "https://graph.microsoft.com/v1.0")
	v.SetDefault("sharepoint.login_base_url", "https://login.microsoftonline.com")
	v.SetDefault("sharepoint.key_field", "RegistrationId")

	v.SetDefault("content.default_hero_variant", "default")
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"server.host",
		"server.port",
		"server.shutdown_timeout",
		"database.url",
		"redis.addr",
		"redis.password",
		"redis.db",
		"auth.jwt_secret",
		"auth.token_ttl",
		"auth.setup_secret",
		"logging.level",
		"logging.format",
		"worker.count",
		"sharepoint.tenant_id",
		"sharepoint.client_id",
		"sharepoint.client_secret",
		"sharepoint.site_id",
		"sharepoint.list_id",
		"sharepoint.drive_id",
		"sharepoint.folder",
		"sharepoint.key_field",
		"sharepoint.batch_size",
		"sharepoint.batch_delay",
		"sharepoint.graph_base_url",
		"sharepoint.login_base_url",
		"content.default_hero_variant",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
