package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment `mapstructure:"-"`

	// Server configuration
	ServerHost string `mapstructure:"server_host"`
	ServerPort string `mapstructure:"server_port"`

	// Database configuration
	DBDriver    string `mapstructure:"db_driver"`
	DBHost      string `mapstructure:"db_host"`
	DBPort      string `mapstructure:"db_port"`
	DBUser      string `mapstructure:"db_user"`
	DBPassword  string `mapstructure:"db_password"`
	DBName      string `mapstructure:"db_name"`
	DBSSLMode   string `mapstructure:"db_ssl_mode"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`

	// Redis configuration
	RedisURL      string `mapstructure:"redis_url"`
	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     string `mapstructure:"redis_port"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	// Session configuration
	SessionSecret       string        `mapstructure:"session_secret"`
	SessionTTL          time.Duration `mapstructure:"session_ttl"`
	SessionCookieName   string        `mapstructure:"session_cookie_name"`
	SessionCookieSecure bool          `mapstructure:"session_cookie_secure"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	BcryptCost         int      `mapstructure:"bcrypt_cost"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	// Image storage
	S3Bucket        string `mapstructure:"s3_bucket"`
	AWSRegion       string `mapstructure:"aws_region"`
	S3PublicBaseURL string `mapstructure:"s3_public_base_url"`
	UploadMaxBytes  int64  `mapstructure:"upload_max_bytes"`

	// Rate limits, zero disables
	RateLimitRecipeCreation int `mapstructure:"rate_limit_recipe_creation"`
	RateLimitLogin          int `mapstructure:"rate_limit_login"`
}

// secretKeys are read from Docker secrets and take precedence over the environment.
var secretKeys = []string{
	"db_user",
	"db_password",
	"redis_password",
	"redis_url",
	"session_secret",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", "8080")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "recetario")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("sqlite_path", "recetario.db")
	v.SetDefault("auto_migrate", true)

	v.SetDefault("redis_url", "")
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("session_secret", "")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("session_cookie_name", "recetario_session")
	v.SetDefault("session_cookie_secure", false)

	v.SetDefault("cors_allowed_origins", "http://localhost")
	v.SetDefault("bcrypt_cost", 12)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("log_file", "")

	v.SetDefault("s3_bucket", "")
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("s3_public_base_url", "")
	v.SetDefault("upload_max_bytes", 5*1024*1024)

	v.SetDefault("rate_limit_recipe_creation", 30)
	v.SetDefault("rate_limit_login", 10)
}

// LoadConfig reads configuration from an optional .env file, the environment and Docker secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env != Production {
		// .env is optional
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.Env = env

	for _, name := range secretKeys {
		if value := readSecret(name); value != "" {
			applySecret(cfg, name, value)
		}
	}
	cfg.CORSAllowedOrigins = normalizeOrigins(cfg.CORSAllowedOrigins)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// PostgresDSN returns the connection string for the configured Postgres database
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func applySecret(cfg *Config, name, value string) {
	switch name {
	case "db_user":
		cfg.DBUser = value
	case "db_password":
		cfg.DBPassword = value
	case "redis_password":
		cfg.RedisPassword = value
	case "redis_url":
		cfg.RedisURL = value
	case "session_secret":
		cfg.SessionSecret = value
	}
}

func normalizeOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, origin := range strings.Split(item, ",") {
			origin = strings.TrimRight(strings.TrimSpace(origin), "/")
			if origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
