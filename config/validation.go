package config

import (
	"errors"
	"fmt"
	"strconv"
)

// MinProductionSecretLength is the shortest session secret accepted in production.
const MinProductionSecretLength = 32

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the loaded configuration and reports every problem found
func ValidateConfig(cfg *Config) error {
	var errs []error
	add := func(field, message string) {
		errs = append(errs, ValidationError{Field: field, Message: message})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port < 1 || port > 65535 {
		add("SERVER_PORT", "must be a port number")
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for postgres")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for postgres")
		}
		if cfg.DBUser == "" {
			add("DB_USER", "is required for postgres")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for sqlite")
		}
	default:
		add("DB_DRIVER", "must be postgres or sqlite")
	}

	if cfg.RedisURL == "" && cfg.RedisHost == "" {
		add("REDIS_HOST", "is required when REDIS_URL is not set")
	}

	if cfg.SessionSecret == "" {
		add("SESSION_SECRET", "is required")
	}
	if cfg.SessionTTL <= 0 {
		add("SESSION_TTL", "must be positive")
	}
	if cfg.SessionCookieName == "" {
		add("SESSION_COOKIE_NAME", "is required")
	}
	if cfg.Env == Production {
		if len(cfg.SessionSecret) < MinProductionSecretLength {
			add("SESSION_SECRET", fmt.Sprintf("must be at least %d characters in production", MinProductionSecretLength))
		}
		if !cfg.SessionCookieSecure {
			add("SESSION_COOKIE_SECURE", "must be enabled in production")
		}
	}

	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		add("BCRYPT_COST", "must be between 4 and 31")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		add("LOG_FORMAT", "must be json or text")
	}
	if cfg.UploadMaxBytes <= 0 {
		add("UPLOAD_MAX_BYTES", "must be positive")
	}
	if cfg.RateLimitRecipeCreation < 0 || cfg.RateLimitLogin < 0 {
		add("RATE_LIMIT", "must not be negative")
	}

	return errors.Join(errs...)
}
