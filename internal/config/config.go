package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const maxAdminPasswordBytes = 72

const (
	SessionStoreGorm  = "gorm"
	SessionStoreRedis = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Admin    AdminConfig
	Session  SessionConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP and presentation settings.
type ServerConfig struct {
	Port            int
	TimeZone        string
	DefaultLanguage string
	TemplatesDir    string
	LocalesDir      string
}

type DatabaseConfig struct {
	URL string
}

// AdminConfig holds the single shared administrator credential.
type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

type SessionConfig struct {
	Store        string
	RedisURL     string
	CookieSecure bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// Load reads an optional .env file and then the environment. Every value has
// a hardcoded fallback so the kiosk starts with no configuration at all.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("PORT", 8080),
			TimeZone:        getEnv("TZ", "UTC"),
			DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
			TemplatesDir:    getEnv("TEMPLATES_DIR", filepath.Join("internal", "templates")),
			LocalesDir:      getEnv("LOCALES_DIR", filepath.Join("internal", "i18n", "locales")),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "sqlite3://"+filepath.Join("data", "drinktab.db")),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			Password:     getEnv("ADMIN_PASSWORD", "password"),
			PasswordHash: strings.TrimSpace(getEnv("ADMIN_PASSWORD_HASH", "")),
		},
		Session: SessionConfig{
			Store:        strings.ToLower(getEnv("SESSION_STORE", SessionStoreGorm)),
			RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
			CookieSecure: getEnvAsBool("COOKIE_SECURE", false),
		},
		Logger: LoggerConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "console")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("database url is required")
	}

	if strings.TrimSpace(c.Admin.Username) == "" {
		return fmt.Errorf("admin username is required")
	}

	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return fmt.Errorf("admin password or password hash is required")
	}

	if c.Admin.PasswordHash == "" && len(c.Admin.Password) > maxAdminPasswordBytes {
		return fmt.Errorf("admin password must be at most %d bytes (bcrypt limit)", maxAdminPasswordBytes)
	}

	switch c.Session.Store {
	case SessionStoreGorm:
	case SessionStoreRedis:
		if strings.TrimSpace(c.Session.RedisURL) == "" {
			return fmt.Errorf("redis url is required when session store is redis")
		}
	default:
		return fmt.Errorf("invalid session store: %s (must be gorm or redis)", c.Session.Store)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	return nil
}

// Address returns the listen address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
