package headless

import (
	"time"
)

// Config defines headless execution limits
type Config struct {
	Timeout          time.Duration // Wall-clock limit for one document
	MaxCallStackSize int           // Maximum JS call depth
	EnableConsole    bool          // Capture console.log/warn/error/info
}

// DefaultConfig returns the default execution limits
func DefaultConfig() Config {
	return Config{
		Timeout:          5 * time.Second,
		MaxCallStackSize: 1024,
		EnableConsole:    true,
	}
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    `json:"level"`   // log, warn, error, info
	Message string    `json:"message"` // Joined arguments
	Time    time.Time `json:"time"`
}

// Render is the observable outcome of running one document
type Render struct {
	UnitID      string        `json:"unit_id"`
	Body        string        `json:"body"`        // Final body markup
	Notices     []string      `json:"notices"`     // Text of in-document error notices
	Errors      []string      `json:"errors"`      // Uncaught errors, including parse errors
	Console     []LogEntry    `json:"console"`     // Captured console output
	Skipped     int           `json:"skipped"`     // External or non-classic scripts not run
	Interrupted bool          `json:"interrupted"` // Timeout or cancellation stopped execution
	Duration    time.Duration `json:"duration_ns"`
}

// ContentFailed reports whether the unit's own code failed
func (r *Render) ContentFailed() bool {
	return len(r.Notices) > 0 || len(r.Errors) > 0 || r.Interrupted
}
