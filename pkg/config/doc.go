// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables
// with sensible defaults for everything except the two backing stores.
//
// # Configuration Structure
//
// Required:
//
//	DATABASE_URL="postgres://localhost/kubestro"
//	REDIS_URL="redis://localhost:6379"
//
// Admin bootstrap (optional; a set password auto-provisions the admin
// account at boot):
//
//	ADMIN_EMAIL="admin@acme.com"
//	ADMIN_PASSWORD="..."
//
// Server settings:
//
//	KUBESTRO_HOST="0.0.0.0"
//	KUBESTRO_PORT="8080"
//	KUBESTRO_HEALTH_PORT="9090"
//	KUBESTRO_READ_TIMEOUT="15s"
//	KUBESTRO_WRITE_TIMEOUT="15s"
//
// Observability settings:
//
//	KUBESTRO_LOG_LEVEL="info"  # debug, info, warn, error
//	KUBESTRO_LOG_JSON="true"
//
// The OIDC block (OIDC_CONFIG_URL and friends) is read by pkg/oidc.
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
package config
