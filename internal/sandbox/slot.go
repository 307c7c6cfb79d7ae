package sandbox

import (
	"context"
	"fmt"
	"sync"
)

// Surface establishes isolation contexts for one display slot. Every call
// to Open must return a context that shares nothing with earlier ones.
type Surface interface {
	Open(ctx context.Context) (Boundary, error)
}

// Boundary is a single isolation context. It holds at most one document.
//
// Ready blocks until the context can accept a document or ctx is done.
// Clear may be called while Ready is still blocked or Write is still
// running, and must make the context unusable and stop the write; after
// Clear nothing written to it may remain visible.
type Boundary interface {
	Ready(ctx context.Context) error
	Write(doc Document) error
	Clear() error
}

// Slot is the single place where a host shows a document. It owns at most
// one live boundary at a time.
//
// Present always tears down what the slot held before opening a new
// boundary, and a load only writes if it is still the latest one when its
// boundary becomes ready. When several presents overlap, the last one wins.
type Slot struct {
	name     string
	surface  Surface
	observer Observer

	mu       sync.Mutex
	boundary Boundary
	current  *load
	shown    Document
}

type load struct {
	doc    Document
	cancel context.CancelFunc
	done   chan struct{}
	err    error // guarded by Slot.mu
}

// SlotOption configures a Slot
type SlotOption func(*Slot)

// WithObserver reports slot lifecycle events to o
func WithObserver(o Observer) SlotOption {
	return func(s *Slot) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewSlot creates an empty slot backed by surface
func NewSlot(name string, surface Surface, opts ...SlotOption) *Slot {
	s := &Slot{
		name:     name,
		surface:  surface,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the slot name
func (s *Slot) Name() string {
	return s.name
}

// Present shows doc in the slot. Whatever the slot held is released first,
// then a fresh boundary is opened and doc is written once it is ready.
//
// Present returns once the load is scheduled; use Wait for its outcome.
// The load belongs to the slot, not to ctx: cancelling ctx after Present
// returns does not abort it, only Release or a later Present does.
// Errors wrap ErrContextUnavailable.
func (s *Slot) Present(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.releaseLocked(); err != nil {
		s.observer.Unavailable(s.name, err)
		return err
	}

	boundary, err := s.surface.Open(ctx)
	if err != nil {
		err = fmt.Errorf("%w: slot %s: %w", ErrContextUnavailable, s.name, err)
		s.observer.Unavailable(s.name, err)
		return err
	}

	loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l := &load{
		doc:    doc,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.boundary = boundary
	s.current = l

	go s.run(loadCtx, boundary, l)
	return nil
}

func (s *Slot) run(ctx context.Context, boundary Boundary, l *load) {
	defer close(l.done)
	defer l.cancel()

	readyErr := boundary.Ready(ctx)

	s.mu.Lock()
	if s.current != l {
		l.err = ErrSuperseded
		s.observer.Discarded(s.name)
		s.mu.Unlock()
		return
	}
	if readyErr != nil {
		l.err = fmt.Errorf("%w: slot %s: %w", ErrContextUnavailable, s.name, readyErr)
		s.observer.Unavailable(s.name, l.err)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// Write runs unlocked so Release can clear the boundary mid-write
	writeErr := boundary.Write(l.doc)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != l {
		l.err = ErrSuperseded
		s.observer.Discarded(s.name)
		return
	}
	if writeErr != nil {
		l.err = fmt.Errorf("%w: slot %s: %w", ErrContextUnavailable, s.name, writeErr)
		s.observer.Unavailable(s.name, l.err)
		return
	}

	s.shown = l.doc
	s.observer.Presented(s.name)
}

// Release tears down the slot's boundary. Releasing an empty slot is a no-op.
// A pending load is abandoned and will not write.
func (s *Slot) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseLocked()
}

func (s *Slot) releaseLocked() error {
	if s.boundary == nil && s.current == nil {
		return nil
	}

	if s.current != nil {
		s.current.cancel()
		s.current = nil
	}

	var err error
	if s.boundary != nil {
		if cerr := s.boundary.Clear(); cerr != nil {
			err = fmt.Errorf("%w: slot %s: clear: %w", ErrContextUnavailable, s.name, cerr)
		}
		s.boundary = nil
	}
	s.shown = Document{}

	s.observer.Released(s.name)
	return err
}

// Wait blocks until the latest load has finished and returns its outcome:
// nil once the document was written, ErrSuperseded when it was overtaken,
// or an ErrContextUnavailable error. Wait on an empty slot returns nil.
func (s *Slot) Wait(ctx context.Context) error {
	s.mu.Lock()
	l := s.current
	s.mu.Unlock()

	if l == nil {
		return nil
	}

	select {
	case <-l.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return l.err
}

// Shown returns the document currently visible in the slot, if any
func (s *Slot) Shown() (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown, !s.shown.IsZero()
}
