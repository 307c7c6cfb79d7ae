// Package id generates the identifiers handed out by the viewer service.
//
// Identifiers are ULIDs with a short type prefix so they read well in logs:
//   - frm_*: isolation frame tokens (one per presented simulation document)
//   - req_*: HTTP request ids
//   - trc_*, spn_*: trace and span ids
//
// Frame tokens double as capability URLs for the sandboxed iframe, so the
// generator always draws entropy from crypto/rand unless a test swaps it.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// FrameToken identifies one presented document inside an isolation frame
type FrameToken string

// RequestID identifies an API request
type RequestID string

const (
	FramePrefix   = "frm"
	RequestPrefix = "req"
	TracePrefix   = "trc"
	SpanPrefix    = "spn"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Tests use it for deterministic tokens.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewFrameToken issues a frame token from g
func (g *Generator) NewFrameToken() FrameToken {
	return FrameToken(g.GenerateWithPrefix(FramePrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewTraceID generates a trace id
func NewTraceID() string {
	return Default().GenerateWithPrefix(TracePrefix)
}

// NewSpanID generates a span id
func NewSpanID() string {
	return Default().GenerateWithPrefix(SpanPrefix)
}

func (t FrameToken) String() string { return string(t) }
func (r RequestID) String() string  { return string(r) }

// ValidFrameToken reports whether s has the frm_<ulid> shape
func ValidFrameToken(s string) bool {
	rest, ok := strings.CutPrefix(s, FramePrefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.ParseStrict(rest)
	return err == nil
}

// Timestamp extracts the issue time from a prefixed or bare ULID
func Timestamp(s string) (time.Time, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	parsed, err := ulid.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
