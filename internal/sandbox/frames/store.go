package frames

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox"
	"github.com/GriffinCanCode/Coursebook/backend/internal/shared/id"
)

var (
	// ErrUnknownFrame means the token was revoked or never issued
	ErrUnknownFrame = errors.New("frames: unknown or revoked frame")
	// ErrFramePending means the frame exists but its document is not written yet
	ErrFramePending = errors.New("frames: document not written yet")

	errCapacity   = errors.New("frame limit reached")
	errSlotClosed = errors.New("slot expired")
	errCleared    = errors.New("frame cleared")
)

// Key identifies one display slot of one viewer
type Key struct {
	Viewer string
	Slot   string
}

func (k Key) String() string {
	return k.Viewer + "/" + k.Slot
}

// Config bounds the store
type Config struct {
	MaxFrames int           // Live frames across all viewers
	TTL       time.Duration // Idle time after which a slot is released
}

// Option configures a Store
type Option func(*Store)

// WithObserver passes slot lifecycle events to o
func WithObserver(o sandbox.Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// WithLiveGauge reports the live frame count after every change
func WithLiveGauge(set func(int)) Option {
	return func(s *Store) {
		s.gauge = set
	}
}

// WithGenerator sets the token generator
func WithGenerator(g *id.Generator) Option {
	return func(s *Store) {
		s.ids = g
	}
}

// Store hands out browser-facing isolation frames. Every viewer slot is a
// sandbox.Slot whose surface issues one capability token per boundary; the
// browser fetches the document by that token from a sandboxed iframe.
//
// Lock order is slot before store: slots call into the store while holding
// their own lock, so the store never calls a slot while holding mu.
type Store struct {
	config   Config
	observer sandbox.Observer
	gauge    func(int)
	ids      *id.Generator
	now      func() time.Time

	mu     sync.Mutex
	slots  map[Key]*entry
	frames map[id.FrameToken]*Frame
}

type entry struct {
	key      Key
	slot     *sandbox.Slot
	surface  *surface
	lastSeen time.Time
}

// NewStore creates an empty store
func NewStore(config Config, opts ...Option) *Store {
	if config.MaxFrames <= 0 {
		config.MaxFrames = 1024
	}
	if config.TTL <= 0 {
		config.TTL = 30 * time.Minute
	}

	s := &Store{
		config: config,
		ids:    id.Default(),
		now:    time.Now,
		slots:  make(map[Key]*entry),
		frames: make(map[id.FrameToken]*Frame),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Present shows doc in the viewer's slot and returns the token under which
// the browser can fetch it. A present that loses to a later one for the
// same slot returns the winner's token.
func (s *Store) Present(ctx context.Context, key Key, doc sandbox.Document) (id.FrameToken, error) {
	e := s.entry(key)

	if err := e.slot.Present(ctx, doc); err != nil {
		return "", err
	}
	if err := e.slot.Wait(ctx); err != nil && !errors.Is(err, sandbox.ErrSuperseded) {
		return "", err
	}

	token, ok := e.surface.shown()
	if !ok {
		return "", fmt.Errorf("%w: slot %s has no frame", sandbox.ErrContextUnavailable, key)
	}
	return token, nil
}

// Release tears down the viewer's slot. Unknown slots are a no-op.
func (s *Store) Release(key Key) error {
	s.mu.Lock()
	e, ok := s.slots[key]
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return e.slot.Release()
}

// Lookup returns the document published under token and marks its slot as
// recently seen.
func (s *Store) Lookup(token id.FrameToken) (sandbox.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.frames[token]
	if !ok {
		return sandbox.Document{}, ErrUnknownFrame
	}
	if e, ok := s.slots[f.key]; ok {
		e.lastSeen = s.now()
	}
	if !f.written {
		return sandbox.Document{}, ErrFramePending
	}
	return f.doc, nil
}

// Live returns the number of frames not yet cleared
func (s *Store) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// Sweep releases slots idle for longer than the TTL and returns how many
// were released.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	var expired []*entry
	for key, e := range s.slots {
		if now.Sub(e.lastSeen) > s.config.TTL {
			expired = append(expired, e)
			delete(s.slots, key)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		_ = e.slot.Release()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then releases everything
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Close()
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}

// Close releases every slot
func (s *Store) Close() {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.slots))
	for key, e := range s.slots {
		entries = append(entries, e)
		delete(s.slots, key)
	}
	s.mu.Unlock()

	for _, e := range entries {
		_ = e.slot.Release()
	}
}

// entry returns the slot entry for key, creating it on first use
func (s *Store) entry(key Key) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.slots[key]; ok {
		e.lastSeen = s.now()
		return e
	}

	e := &entry{key: key, lastSeen: s.now()}
	e.surface = &surface{store: s, entry: e}
	var opts []sandbox.SlotOption
	if s.observer != nil {
		opts = append(opts, sandbox.WithObserver(s.observer))
	}
	e.slot = sandbox.NewSlot(key.Slot, e.surface, opts...)
	s.slots[key] = e
	return e
}

// open issues a frame for e. It fails once the store is full or e was swept.
func (s *Store) open(e *entry) (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slots[e.key] != e {
		return nil, errSlotClosed
	}
	if len(s.frames) >= s.config.MaxFrames {
		return nil, fmt.Errorf("%w (%d)", errCapacity, s.config.MaxFrames)
	}

	f := &Frame{
		token: s.ids.NewFrameToken(),
		key:   e.key,
		store: s,
	}
	s.frames[f.token] = f
	s.reportLive()
	return f, nil
}

// reportLive must be called with mu held
func (s *Store) reportLive() {
	if s.gauge != nil {
		s.gauge(len(s.frames))
	}
}

// surface is the sandbox.Surface of one slot
type surface struct {
	store *Store
	entry *entry

	mu      sync.Mutex
	current *Frame
}

func (su *surface) Open(_ context.Context) (sandbox.Boundary, error) {
	f, err := su.store.open(su.entry)
	if err != nil {
		return nil, err
	}

	su.mu.Lock()
	su.current = f
	su.mu.Unlock()
	return f, nil
}

// shown returns the token of the slot's frame if its document is written
func (su *surface) shown() (id.FrameToken, bool) {
	su.mu.Lock()
	f := su.current
	su.mu.Unlock()

	if f == nil {
		return "", false
	}

	su.store.mu.Lock()
	defer su.store.mu.Unlock()
	if !f.written || f.cleared {
		return "", false
	}
	return f.token, true
}

// Frame is one browser-facing boundary. Its state is guarded by the
// store's mutex.
type Frame struct {
	token id.FrameToken
	key   Key
	store *Store

	doc     sandbox.Document
	written bool
	cleared bool
}

// Token returns the frame's capability token
func (f *Frame) Token() id.FrameToken {
	return f.token
}

// Ready is immediate: the frame exists as soon as its token is issued
func (f *Frame) Ready(ctx context.Context) error {
	f.store.mu.Lock()
	cleared := f.cleared
	f.store.mu.Unlock()

	if cleared {
		return errCleared
	}
	return ctx.Err()
}

// Write publishes doc under the frame's token
func (f *Frame) Write(doc sandbox.Document) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if f.cleared {
		return errCleared
	}
	f.doc = doc
	f.written = true
	return nil
}

// Clear revokes the token; later lookups see ErrUnknownFrame
func (f *Frame) Clear() error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	if f.cleared {
		return nil
	}
	f.cleared = true
	f.doc = sandbox.Document{}
	delete(f.store.frames, f.token)
	f.store.reportLive()
	return nil
}
