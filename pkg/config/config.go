package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment driven settings for the content console.
type Config struct {
	Env            string
	Host           string
	Port           string
	AllowedOrigins []string
	LogLevel       string
	LogDir         string
	Locale         string

	API       APIConfig
	Redis     RedisConfig
	Session   SessionConfig
	Workspace WorkspaceConfig
	Health    HealthConfig
	Limits    LimitsConfig
}

// APIConfig selects the platform REST backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RedisConfig contains the optional Redis connection for session tokens.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SessionConfig controls how long stored tokens live.
type SessionConfig struct {
	TTL        time.Duration
	CookieName string
}

// WorkspaceConfig controls how long an idle product workspace is kept.
type WorkspaceConfig struct {
	TTL time.Duration
}

// HealthConfig controls backend connectivity probing.
type HealthConfig struct {
	ProbeOnStartup bool
	ProbeInterval  time.Duration
}

// LimitsConfig bounds what a single caller may send.
type LimitsConfig struct {
	RequestsPerMinute int
	MaxBodyBytes      int64
}

// Load builds a Config from environment variables with sensible defaults.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("RFS_ENV", "development"),
		Host:     getEnv("RFS_HOST", "0.0.0.0"),
		Port:     getEnv("RFS_PORT", "8081"),
		LogLevel: getEnv("RFS_LOG_LEVEL", "info"),
		LogDir:   getEnv("RFS_LOG_DIR", "logs"),
		Locale:   getEnv("RFS_LOCALE", "pt-BR"),
	}

	cfg.AllowedOrigins = splitAndTrim(os.Getenv("RFS_ALLOWED_ORIGINS"))
	cfg.API = APIConfig{
		BaseURL: strings.TrimRight(getEnv("RFS_API_BASE_URL", "http://localhost:3000/api"), "/"),
		Timeout: time.Duration(getEnvAsInt("RFS_API_TIMEOUT_SECONDS", 30)) * time.Second,
	}
	cfg.Redis = RedisConfig{
		Addr:     os.Getenv("RFS_REDIS_ADDR"),
		Password: os.Getenv("RFS_REDIS_PASSWORD"),
		DB:       getEnvAsInt("RFS_REDIS_DB", 0),
	}
	cfg.Session = SessionConfig{
		TTL:        time.Duration(getEnvAsInt("RFS_SESSION_TTL_HOURS", 24*7)) * time.Hour,
		CookieName: getEnv("RFS_SESSION_COOKIE", "rfs_session"),
	}
	cfg.Workspace = WorkspaceConfig{
		TTL: time.Duration(getEnvAsInt("RFS_WORKSPACE_TTL_MINUTES", 30)) * time.Minute,
	}
	cfg.Health = HealthConfig{
		ProbeOnStartup: getEnvAsBool("RFS_HEALTH_PROBE_ON_STARTUP", cfg.IsDevelopment()),
		ProbeInterval:  time.Duration(getEnvAsInt("RFS_HEALTH_PROBE_INTERVAL_MINUTES", 0)) * time.Minute,
	}

	cfg.Limits = LimitsConfig{
		RequestsPerMinute: getEnvAsInt("RFS_RATE_LIMIT_PER_MINUTE", 120),
		MaxBodyBytes:      int64(getEnvAsInt("RFS_MAX_UPLOAD_MB", 512)) << 20,
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("RFS_API_BASE_URL must not be empty")
	}

	return cfg, nil
}

// ServerAddress joins the host and port into a listen address.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsProduction reports whether the console is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// IsDevelopment reports whether the console is running in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return fallback
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})

	var cleaned []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	return cleaned
}
