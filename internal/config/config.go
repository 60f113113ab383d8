package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Email    EmailConfig
	Embed    EmbedConfig `mapstructure:"embed"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	RefreshSecret      string `mapstructure:"refresh_secret"`
	ExpiryHours        int    `mapstructure:"expiry_hours"`
	RefreshExpiryHours int    `mapstructure:"refresh_expiry_hours"`
}

type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	Enabled  bool   `mapstructure:"enabled"`
}

// EmbedConfig tunes the public delivery surface: how long third-party
// caches may hold a config response and how the loader reaches back.
type EmbedConfig struct {
	// PublicBaseURL is the externally reachable origin the loader and
	// widget bundle are served from, e.g. https://cdn.example.com.
	PublicBaseURL string `mapstructure:"public_base_url"`
	// CacheTTLSeconds is the shared-cache TTL advertised on config
	// responses and used by the in-process resolver cache.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
	// StaleWhileRevalidateSeconds extends Cache-Control for background
	// revalidation by shared caches.
	StaleWhileRevalidateSeconds int `mapstructure:"stale_while_revalidate_seconds"`
	// LoaderPollIntervalMs / LoaderPollMaxAttempts bound the loader's
	// wait for the widget bundle's global entry point to appear.
	LoaderPollIntervalMs  int `mapstructure:"loader_poll_interval_ms"`
	LoaderPollMaxAttempts int `mapstructure:"loader_poll_max_attempts"`
}

func (c EmbedConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	viper.SetDefault("embed.cache_ttl_seconds", 300)
	viper.SetDefault("embed.stale_while_revalidate_seconds", 600)
	viper.SetDefault("embed.loader_poll_interval_ms", 50)
	viper.SetDefault("embed.loader_poll_max_attempts", 40)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
