// Package content fetches catalog records from a content backend.
//
// Directus talks to a Directus instance over its items REST API. File reads
// YAML and TOML fixtures from disk for offline development and tests. Both
// satisfy Source and report failures as ErrNotFound or ErrUnavailable.
package content
