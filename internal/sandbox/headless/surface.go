package headless

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox"
)

var errCleared = errors.New("boundary cleared")

// Surface opens headless boundaries. Each boundary executes the document
// written to it in its own VM and keeps the resulting Render.
type Surface struct {
	runtime *Runtime

	mu      sync.Mutex
	current *boundary
}

// NewSurface creates a headless surface
func NewSurface(config Config) *Surface {
	return &Surface{runtime: New(config)}
}

// Open establishes a fresh boundary
func (s *Surface) Open(_ context.Context) (sandbox.Boundary, error) {
	ctx, cancel := context.WithCancel(context.Background())
	return &boundary{surface: s, ctx: ctx, cancel: cancel}, nil
}

// Rendered returns the Render of the document currently shown, if any
func (s *Surface) Rendered() (*Render, bool) {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current == nil {
		return nil, false
	}
	return current.rendered()
}

type boundary struct {
	surface *Surface
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	render *Render
}

// Ready is immediate; a headless boundary needs no load step
func (b *boundary) Ready(ctx context.Context) error {
	select {
	case <-b.ctx.Done():
		return errCleared
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Write runs doc to completion, until the configured timeout or until the
// boundary is cleared
func (b *boundary) Write(doc sandbox.Document) error {
	if b.ctx.Err() != nil {
		return errCleared
	}

	render, err := b.surface.runtime.Run(b.ctx, doc)
	if err != nil {
		return fmt.Errorf("headless write: %w", err)
	}

	// b.mu before surface.mu, as in Clear
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx.Err() != nil {
		return errCleared
	}
	b.render = render

	b.surface.mu.Lock()
	b.surface.current = b
	b.surface.mu.Unlock()
	return nil
}

// Clear stops any running script and drops the Render
func (b *boundary) Clear() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.render = nil

	b.surface.mu.Lock()
	if b.surface.current == b {
		b.surface.current = nil
	}
	b.surface.mu.Unlock()
	return nil
}

func (b *boundary) rendered() (*Render, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.render, b.render != nil
}

// Preflight composes unit and presents it in a throwaway headless slot,
// returning what the document did. The slot is released before returning.
func Preflight(ctx context.Context, unit sandbox.Unit, config Config, opts ...sandbox.SlotOption) (*Render, error) {
	surface := NewSurface(config)
	slot := sandbox.NewSlot("preflight", surface, opts...)
	defer func() { _ = slot.Release() }()

	if err := slot.Present(ctx, sandbox.Compose(unit)); err != nil {
		return nil, err
	}
	if err := slot.Wait(ctx); err != nil {
		return nil, err
	}

	render, ok := surface.Rendered()
	if !ok {
		return nil, fmt.Errorf("%w: preflight produced no render", sandbox.ErrContextUnavailable)
	}
	return render, nil
}
