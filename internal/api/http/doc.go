// Package http provides the HTTP handlers of the course viewer.
//
// Pages are server-rendered with html/template and gin. The simulations page
// presents the selected simulation into the viewer's display slot and embeds
// it as a sandboxed iframe that fetches the document by its frame token.
//
// Endpoints:
//   - Pages: /, /courses, /live-preview, /simulations
//   - Frames: /frames/:token, POST /frames/release
//   - API: /api/courses, /api/courses/:id, /api/simulations,
//     /api/simulations/:id/document, POST /api/simulations/:id/preflight
//   - Health: /health
//
// Error mapping:
//   - content.ErrNotFound: 404
//   - content.ErrUnavailable, content.ErrBadEnvelope: 502
//   - sandbox.ErrContextUnavailable: 503, shown as a message in the host page
//
// Example Usage:
//
//	handlers, err := http.NewHandlers(source, store, metrics, logger, headless.DefaultConfig())
//	router.GET("/simulations", handlers.SimulationsPage)
//	router.GET("/frames/:token", handlers.Frame)
package http
