package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis — optional; empty disables the async alert pipeline
	RedisURL string `mapstructure:"REDIS_URL"`

	// Auth
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Workers
	WorkerPoolSize int `mapstructure:"WORKER_POOL_SIZE"`

	// SMTP — optional; used only for low-stock alert mail
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	AlertEmail   string `mapstructure:"ALERT_EMAIL"`
}

// Load reads configuration from environment variables (and optional .env file).
// DATABASE_URL and JWT_SECRET have no defaults: running without either is a
// deployment mistake and the process must not come up.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("WORKER_POOL_SIZE", 2)
	viper.SetDefault("SMTP_PORT", 587)

	// Keys without defaults must be bound explicitly or AutomaticEnv
	// won't surface them through Unmarshal.
	for _, key := range []string{
		"DATABASE_URL", "JWT_SECRET", "REDIS_URL",
		"SMTP_HOST", "SMTP_USER", "SMTP_PASSWORD", "ALERT_EMAIL",
	} {
		_ = viper.BindEnv(key)
	}

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}
