// Package middleware provides the HTTP middleware of the course viewer.
//
// Middleware stack includes:
//   - RequestID: X-Request-ID assignment and propagation
//   - Logger: one zap line per request
//   - CORS: cross-origin access to the JSON API
//   - RateLimit: per-IP token bucket rate limiting
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Logger(log))
//	api.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
