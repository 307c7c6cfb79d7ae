package sandbox

import "errors"

var (
	// ErrContextUnavailable means the host could not establish or write an
	// isolation context. It is a host failure; content failures never
	// produce it.
	ErrContextUnavailable = errors.New("sandbox: isolation context unavailable")

	// ErrSuperseded is the outcome of a load that was overtaken by a later
	// present or a release before its context became ready.
	ErrSuperseded = errors.New("sandbox: load superseded")
)
