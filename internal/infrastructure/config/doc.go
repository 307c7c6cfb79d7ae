// Package config provides 12-factor configuration management for the viewer.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags in cmd/server can override the port, content URL, fixture
// directory and development logging.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Content: content backend (directus or file fixtures), URL, token
//   - Sandbox: isolation frame limits and preflight execution timeout
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - CORS: origins allowed on the JSON API
//
// The content token is only ever read from CONTENT_TOKEN.
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - CONTENT_BACKEND, CONTENT_URL, CONTENT_TOKEN, CONTENT_TIMEOUT, CONTENT_RPS, CONTENT_FIXTURES
//   - SANDBOX_TIMEOUT, SANDBOX_MAX_FRAMES, SANDBOX_FRAME_TTL
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CORS_ORIGINS
package config
