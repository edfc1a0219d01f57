package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server             ServerConfig             `mapstructure:"server"`
	Auth               AuthConfig               `mapstructure:"auth"`
	SMTP               SMTPConfig               `mapstructure:"smtp"`
	Admin              AdminConfig              `mapstructure:"admin"`
	App                AppConfig                `mapstructure:"app"`
	CORS               CORSConfig               `mapstructure:"cors"`
	RateLimit          RateLimitConfig          `mapstructure:"rate_limit"`
	Redis              RedisConfig              `mapstructure:"redis"`
	Supabase           SupabaseConfig           `mapstructure:"supabase"`
	RecipientRateLimit RecipientRateLimitConfig `mapstructure:"recipient_rate_limit"`
	Sweeper            SweeperConfig            `mapstructure:"sweeper"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// AuthConfig holds API key authentication settings. When no keys are
// configured the email endpoints are served unauthenticated, matching the
// public front-end deployment.
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

// SMTPConfig holds mail transport settings.
type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	Secure      bool   `mapstructure:"secure"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// AdminConfig holds administrator notification addresses.
// Email is the single fallback/contact target; Emails is the alert fan-out list.
type AdminConfig struct {
	Email  string   `mapstructure:"email"`
	Emails []string `mapstructure:"emails"`
}

// AppConfig holds externally visible application settings.
type AppConfig struct {
	// BaseURL is the public front-end URL used to build links embedded in emails.
	BaseURL string `mapstructure:"base_url"`
}

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SupabaseConfig holds Supabase project settings.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// RecipientRateLimitConfig holds per-recipient rate limiting settings for the
// public subscribe/contact endpoints.
type RecipientRateLimitConfig struct {
	MaxPerHour int `mapstructure:"max_per_hour"`
}

// SweeperConfig holds report retention sweeper settings (durations as plain
// numbers for YAML/env compat).
type SweeperConfig struct {
	IntervalSec    int  `mapstructure:"interval_sec"`
	RetentionHours int  `mapstructure:"retention_hours"`
	RunImmediately bool `mapstructure:"run_immediately"`
}

// Load reads configuration from config.yaml and environment variables.
// Environment variables use the CRIMEWATCH_ prefix and underscore separators.
// Example: CRIMEWATCH_SMTP_HOST overrides smtp.host in config.yaml.
func Load() (*Config, error) {
	v := viper.New()

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Load .env file if it exists
	_ = godotenv.Load()

	// Environment variable settings
	v.SetEnvPrefix("CRIMEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Empty-string defaults register the keys so viper picks them
	// up from environment variables even without a config file.
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.secure", false)
	v.SetDefault("smtp.from_address", "")
	v.SetDefault("smtp.from_name", "Crime Report Kenya")
	v.SetDefault("admin.email", "")
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.service_key", "")
	v.SetDefault("app.base_url", "http://localhost:3000")
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("recipient_rate_limit.max_per_hour", 3)
	v.SetDefault("sweeper.interval_sec", 3600)  // 1 hour
	v.SetDefault("sweeper.retention_hours", 24) // closed reports kept for a day
	v.SetDefault("sweeper.run_immediately", false)

	// Read config file (optional — env vars can provide everything)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Handle comma-separated values from env vars
	if apiKeysStr := v.GetString("auth.api_keys"); apiKeysStr != "" && len(cfg.Auth.APIKeys) == 0 {
		cfg.Auth.APIKeys = splitTrimmed(apiKeysStr)
	}
	if adminEmailsStr := v.GetString("admin.emails"); adminEmailsStr != "" && len(cfg.Admin.Emails) == 0 {
		cfg.Admin.Emails = splitTrimmed(adminEmailsStr)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate rejects configurations that cannot serve traffic. A server without
// transport credentials would accept notification requests it can never
// deliver, so startup aborts instead.
func (c *Config) validate() error {
	var missing []string
	if c.SMTP.Host == "" {
		missing = append(missing, "smtp.host")
	}
	if c.SMTP.Username == "" {
		missing = append(missing, "smtp.username")
	}
	if c.SMTP.Password == "" {
		missing = append(missing, "smtp.password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
