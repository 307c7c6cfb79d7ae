// Package server wires the course viewer together: content source, frame
// store, handlers, middleware and metrics, behind one gzip-compressed
// handler with graceful shutdown.
package server
