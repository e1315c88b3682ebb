package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vidora/vidora/pkg/observability"
	"github.com/vidora/vidora/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Auth configuration (token secrets, expiries, hashing cost)
	Auth AuthConfig

	// Storage configuration
	Storage storage.Config

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Maximum accepted request body size in bytes. Has to fit multipart
	// image uploads.
	MaxBodyBytes int64

	// CORS allowed origins, comma separated in the environment.
	CORSOrigins []string

	// SecureCookies marks auth cookies Secure. Disable only for local
	// plain-HTTP development.
	SecureCookies bool
}

// AuthConfig holds token signing and password hashing configuration
type AuthConfig struct {
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration
	BcryptCost         int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel observability.LogLevel
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Auth:          loadAuthConfig(),
		Storage:       loadStorageConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("VIDORA_HOST", "0.0.0.0"),
		Port:            getEnv("VIDORA_PORT", "8080"),
		ReadTimeout:     getEnvDuration("VIDORA_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("VIDORA_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("VIDORA_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("VIDORA_SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("VIDORA_MAX_BODY_BYTES", 16<<20),
		CORSOrigins:     splitAndTrim(getEnv("VIDORA_CORS_ORIGINS", "*")),
		SecureCookies:   getEnvBool("VIDORA_SECURE_COOKIES", true),
	}
}

// loadAuthConfig loads token and hashing configuration from environment
func loadAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  getEnv("VIDORA_ACCESS_TOKEN_SECRET", ""),
		AccessTokenExpiry:  getEnvDuration("VIDORA_ACCESS_TOKEN_EXPIRY", 24*time.Hour),
		RefreshTokenSecret: getEnv("VIDORA_REFRESH_TOKEN_SECRET", ""),
		RefreshTokenExpiry: getEnvDuration("VIDORA_REFRESH_TOKEN_EXPIRY", 10*24*time.Hour),
		BcryptCost:         getEnvInt("VIDORA_BCRYPT_COST", 10),
	}
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if storageType := getEnv("VIDORA_STORAGE_TYPE", ""); storageType != "" {
		cfg.Type = storageType
	}

	// PostgreSQL config
	if pgURL := getEnv("VIDORA_POSTGRES_URL", ""); pgURL != "" {
		cfg.PostgresURL = pgURL
	}
	if maxConns := getEnvInt("VIDORA_POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		cfg.PostgresMaxConns = maxConns
	}
	if minConns := getEnvInt("VIDORA_POSTGRES_MIN_CONNS", 0); minConns > 0 {
		cfg.PostgresMinConns = minConns
	}
	if timeout := getEnvDuration("VIDORA_POSTGRES_TIMEOUT", 0); timeout > 0 {
		cfg.PostgresTimeout = timeout
	}

	// Redis cache config
	if redisURL := getEnv("VIDORA_REDIS_URL", ""); redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if redisPassword := getEnv("VIDORA_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("VIDORA_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if cacheEnabled := getEnv("VIDORA_CACHE_ENABLED", ""); cacheEnabled != "" {
		cfg.CacheEnabled = strings.ToLower(cacheEnabled) == "true"
	}
	if cacheTTL := getEnvDuration("VIDORA_CACHE_TTL", 0); cacheTTL > 0 {
		cfg.CacheTTL = cacheTTL
	}

	// Media uploader config
	if mediaType := getEnv("VIDORA_MEDIA_TYPE", ""); mediaType != "" {
		cfg.MediaType = mediaType
	}
	if mediaRoot := getEnv("VIDORA_MEDIA_ROOT", ""); mediaRoot != "" {
		cfg.MediaRoot = mediaRoot
	}
	if mediaBaseURL := getEnv("VIDORA_MEDIA_BASE_URL", ""); mediaBaseURL != "" {
		cfg.MediaBaseURL = mediaBaseURL
	}

	// S3 config
	if s3Endpoint := getEnv("VIDORA_S3_ENDPOINT", ""); s3Endpoint != "" {
		cfg.S3Endpoint = s3Endpoint
	}
	if s3Region := getEnv("VIDORA_S3_REGION", ""); s3Region != "" {
		cfg.S3Region = s3Region
	}
	if s3Bucket := getEnv("VIDORA_S3_BUCKET", ""); s3Bucket != "" {
		cfg.S3Bucket = s3Bucket
	}
	if s3AccessKey := getEnv("VIDORA_S3_ACCESS_KEY", ""); s3AccessKey != "" {
		cfg.S3AccessKey = s3AccessKey
	}
	if s3SecretKey := getEnv("VIDORA_S3_SECRET_KEY", ""); s3SecretKey != "" {
		cfg.S3SecretKey = s3SecretKey
	}
	if s3UsePathStyle := getEnv("VIDORA_S3_USE_PATH_STYLE", ""); s3UsePathStyle != "" {
		cfg.S3UsePathStyle = strings.ToLower(s3UsePathStyle) == "true"
	}
	if s3PublicURL := getEnv("VIDORA_S3_PUBLIC_URL", ""); s3PublicURL != "" {
		cfg.S3PublicURL = s3PublicURL
	}

	return cfg
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel: observability.ParseLogLevel(getEnv("VIDORA_LOG_LEVEL", "info")),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}

	if c.Auth.AccessTokenSecret == "" {
		return fmt.Errorf("access token secret is required")
	}
	if c.Auth.RefreshTokenSecret == "" {
		return fmt.Errorf("refresh token secret is required")
	}
	if c.Auth.AccessTokenSecret == c.Auth.RefreshTokenSecret {
		return fmt.Errorf("access and refresh token secrets must be different")
	}
	if c.Auth.AccessTokenExpiry <= 0 || c.Auth.RefreshTokenExpiry <= 0 {
		return fmt.Errorf("token expiries must be positive")
	}

	switch c.Storage.Type {
	case "memory":
		// Nothing else required.
	case "postgres":
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be memory or postgres)", c.Storage.Type)
	}

	if c.Storage.CacheEnabled && c.Storage.RedisURL == "" {
		return fmt.Errorf("redis URL is required when the cache is enabled")
	}

	switch c.Storage.MediaType {
	case "filesystem":
		if c.Storage.MediaRoot == "" {
			return fmt.Errorf("media root is required for filesystem media storage")
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 media storage")
		}
	default:
		return fmt.Errorf("invalid media type: %s (must be filesystem or s3)", c.Storage.MediaType)
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt64 returns a 64-bit integer environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default.
// Accepts Go duration strings ("15m") or bare integers meaning seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

// splitAndTrim splits a comma separated list, dropping empty entries.
func splitAndTrim(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
