// Package main is the entry point for the Coursebook server.
//
// The server renders the course, live-preview and simulation pages, serves
// simulations into sandboxed iframes and exposes a small JSON API.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Against a Directus instance
//	CONTENT_TOKEN=... ./server -port 8000 -content-url https://cms.example.com
//
//	# Offline, from fixtures, with console logs
//	./server -fixtures testdata/catalog -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
