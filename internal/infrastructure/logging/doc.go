// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components take a child logger via Component so every line carries a
// "component" field (content, sandbox, frames, http).
//
// Example Usage:
//
//	logger := logging.NewFor("info", false)
//	logger.Component("content").Info("Fetched courses", zap.Int("count", n))
package logging
