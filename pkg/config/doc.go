// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for everything except the token signing secrets, which have
// no default and must be set.
//
// # Configuration Structure
//
// Server settings:
//
//	VIDORA_HOST="0.0.0.0"
//	VIDORA_PORT="8080"
//	VIDORA_READ_TIMEOUT="15s"
//	VIDORA_WRITE_TIMEOUT="15s"
//	VIDORA_MAX_BODY_BYTES="16777216"
//	VIDORA_CORS_ORIGINS="https://app.example.com,https://admin.example.com"
//	VIDORA_SECURE_COOKIES="true"
//
// Auth settings:
//
//	VIDORA_ACCESS_TOKEN_SECRET="..."   # required
//	VIDORA_ACCESS_TOKEN_EXPIRY="24h"
//	VIDORA_REFRESH_TOKEN_SECRET="..."  # required, must differ from access secret
//	VIDORA_REFRESH_TOKEN_EXPIRY="240h"
//	VIDORA_BCRYPT_COST="10"
//
// Storage settings:
//
//	VIDORA_STORAGE_TYPE="postgres"  # memory, postgres
//	VIDORA_POSTGRES_URL="postgres://localhost/vidora"
//	VIDORA_CACHE_ENABLED="true"
//	VIDORA_REDIS_URL="redis://localhost:6379"
//	VIDORA_MEDIA_TYPE="s3"  # filesystem, s3
//	VIDORA_S3_BUCKET="vidora-media"
//	VIDORA_S3_REGION="us-east-1"
//
// Observability settings:
//
//	VIDORA_LOG_LEVEL="info"  # debug, info, warn, error
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Storage: %s\n", cfg.Storage.Type)
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/auth: Uses auth configuration
//   - pkg/observability: Uses observability configuration
package config
