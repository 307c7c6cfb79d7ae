package headless

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox"
)

// Runtime executes composed documents in a goja VM against a parsed DOM.
// Every Run starts from a fresh VM and tree; nothing is carried over.
type Runtime struct {
	config Config
}

// New creates a runtime with the given limits
func New(config Config) *Runtime {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.MaxCallStackSize <= 0 {
		config.MaxCallStackSize = DefaultConfig().MaxCallStackSize
	}
	return &Runtime{config: config}
}

// Run parses doc and executes its inline scripts in document order, then
// fires DOMContentLoaded and load, then one round of queued timers.
//
// Content failures are reported in the Render, never as an error. The error
// return is reserved for documents that cannot be parsed at all.
func (r *Runtime) Run(ctx context.Context, doc sandbox.Document) (*Render, error) {
	start := time.Now()

	dom, err := ParseDOM(doc.HTML())
	if err != nil {
		return nil, err
	}

	s := newSession(r.config, dom, start)
	s.render.UnitID = doc.UnitID()

	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-timer.C:
			s.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			s.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	s.execute()

	s.render.Body = dom.BodyHTML()
	s.render.Notices = dom.Notices()
	s.render.Duration = time.Since(start)
	return s.render, nil
}

type listener struct {
	value goja.Value
	fn    goja.Callable
}

type timer struct {
	fn   goja.Callable
	args []goja.Value
}

// session is the state of a single Run. It is used from one goroutine;
// only vm.Interrupt is called from elsewhere.
type session struct {
	config Config
	vm     *goja.Runtime
	dom    *DOM
	start  time.Time
	render *Render

	window   *goja.Object
	document *goja.Object

	objects   map[*html.Node]*goja.Object
	nodes     map[*goja.Object]*html.Node
	listeners map[*goja.Object]map[string][]listener
	timers    []timer

	readyState string
	reporting  bool
}

func newSession(config Config, dom *DOM, start time.Time) *session {
	vm := goja.New()
	vm.SetMaxCallStackSize(config.MaxCallStackSize)

	s := &session{
		config:     config,
		vm:         vm,
		dom:        dom,
		start:      start,
		render:     &Render{Notices: []string{}, Errors: []string{}, Console: []LogEntry{}},
		objects:    make(map[*html.Node]*goja.Object),
		nodes:      make(map[*goja.Object]*html.Node),
		listeners:  make(map[*goja.Object]map[string][]listener),
		readyState: "loading",
	}
	s.setupGlobals()
	s.injectDOM()
	return s
}

func (s *session) execute() {
	for i, script := range s.dom.Scripts() {
		if s.render.Interrupted {
			return
		}
		if _, hasSrc := getAttr(script, "src"); hasSrc || !isClassicScript(script) {
			s.render.Skipped++
			continue
		}

		_, err := s.vm.RunScript(fmt.Sprintf("script[%d]", i), textContent(script))
		if err != nil {
			s.uncaught(err)
		}
	}

	if s.render.Interrupted {
		return
	}
	s.readyState = "interactive"
	s.dispatch(s.document, "DOMContentLoaded", s.newEvent("DOMContentLoaded"))

	s.readyState = "complete"
	s.dispatch(s.window, "load", s.newEvent("load"))

	// One round only; timers queued by timers are dropped.
	queued := s.timers
	s.timers = nil
	for _, t := range queued {
		if s.render.Interrupted {
			return
		}
		if _, err := t.fn(goja.Undefined(), t.args...); err != nil {
			s.uncaught(err)
		}
	}
}

// uncaught records an error that escaped the document's own handling and
// delivers it to window error listeners.
func (s *session) uncaught(err error) {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		s.render.Interrupted = true
		return
	}

	message := err.Error()
	value := goja.Undefined()
	var ex *goja.Exception
	if errors.As(err, &ex) {
		value = ex.Value()
		message = errorMessage(value)
	}
	s.render.Errors = append(s.render.Errors, message)

	// Errors raised by error listeners are recorded but not redelivered
	if s.reporting {
		return
	}
	s.reporting = true
	defer func() { s.reporting = false }()

	event := s.newEvent("error")
	_ = event.Set("message", message)
	_ = event.Set("error", value)
	s.dispatch(s.window, "error", event)
}

func (s *session) dispatch(target *goja.Object, eventType string, event *goja.Object) {
	registered := s.listeners[target][eventType]
	if len(registered) == 0 {
		return
	}
	_ = event.Set("target", target)
	_ = event.Set("currentTarget", target)

	for _, l := range append([]listener(nil), registered...) {
		if s.render.Interrupted {
			return
		}
		if _, err := l.fn(target, event); err != nil {
			s.uncaught(err)
		}
	}
}

func (s *session) newEvent(eventType string) *goja.Object {
	event := s.vm.NewObject()
	_ = event.Set("type", eventType)
	_ = event.Set("preventDefault", noop)
	_ = event.Set("stopPropagation", noop)
	return event
}

// setupGlobals configures the global object as a browser-like window
func (s *session) setupGlobals() {
	vm := s.vm
	s.window = vm.GlobalObject()

	// Remove dangerous globals
	_ = vm.Set("require", goja.Undefined())
	_ = vm.Set("process", goja.Undefined())
	_ = vm.Set("module", goja.Undefined())
	_ = vm.Set("exports", goja.Undefined())

	_ = vm.Set("window", s.window)
	_ = vm.Set("self", s.window)
	s.eventTarget(s.window)

	console := vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		_ = console.Set(level, s.makeConsoleFunc(level))
	}
	_ = vm.Set("console", console)

	_ = vm.Set("setTimeout", s.schedule)
	_ = vm.Set("setInterval", s.schedule)
	_ = vm.Set("requestAnimationFrame", func(call goja.FunctionCall) goja.Value {
		if fn, ok := goja.AssertFunction(call.Argument(0)); ok {
			s.timers = append(s.timers, timer{fn: fn, args: []goja.Value{vm.ToValue(s.now())}})
		}
		return vm.ToValue(len(s.timers))
	})
	for _, name := range []string{"clearTimeout", "clearInterval", "cancelAnimationFrame"} {
		_ = vm.Set(name, noop)
	}
	for _, name := range []string{"alert", "confirm", "prompt"} {
		_ = vm.Set(name, noop)
	}

	performance := vm.NewObject()
	_ = performance.Set("now", func(goja.FunctionCall) goja.Value { return vm.ToValue(s.now()) })
	_ = vm.Set("performance", performance)

	location := vm.NewObject()
	_ = location.Set("href", "about:srcdoc")
	_ = vm.Set("location", location)

	navigator := vm.NewObject()
	_ = navigator.Set("userAgent", "coursebook-headless")
	_ = vm.Set("navigator", navigator)

	_ = vm.Set("innerWidth", 1024)
	_ = vm.Set("innerHeight", 768)
}

func (s *session) schedule(call goja.FunctionCall) goja.Value {
	if fn, ok := goja.AssertFunction(call.Argument(0)); ok {
		var args []goja.Value
		if len(call.Arguments) > 2 {
			args = append(args, call.Arguments[2:]...)
		}
		s.timers = append(s.timers, timer{fn: fn, args: args})
	}
	return s.vm.ToValue(len(s.timers))
}

func (s *session) now() float64 {
	return float64(time.Since(s.start).Microseconds()) / 1000
}

// makeConsoleFunc creates a console function
func (s *session) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if !s.config.EnableConsole {
			return goja.Undefined()
		}

		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		s.render.Console = append(s.render.Console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		return goja.Undefined()
	}
}

// eventTarget installs addEventListener and removeEventListener on obj
func (s *session) eventTarget(obj *goja.Object) {
	_ = obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		eventType := call.Argument(0).String()
		value := call.Argument(1)
		fn, ok := goja.AssertFunction(value)
		if !ok {
			return goja.Undefined()
		}
		if s.listeners[obj] == nil {
			s.listeners[obj] = make(map[string][]listener)
		}
		for _, l := range s.listeners[obj][eventType] {
			if l.value.SameAs(value) {
				return goja.Undefined()
			}
		}
		s.listeners[obj][eventType] = append(s.listeners[obj][eventType], listener{value: value, fn: fn})
		return goja.Undefined()
	})
	_ = obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		eventType := call.Argument(0).String()
		value := call.Argument(1)
		registered := s.listeners[obj][eventType]
		for i, l := range registered {
			if l.value.SameAs(value) {
				s.listeners[obj][eventType] = append(registered[:i:i], registered[i+1:]...)
				break
			}
		}
		return goja.Undefined()
	})
}

func errorMessage(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return fmt.Sprint(v)
	}
	if obj, ok := v.(*goja.Object); ok {
		if m := obj.Get("message"); m != nil && !goja.IsUndefined(m) {
			return m.String()
		}
	}
	return v.String()
}

func noop(goja.FunctionCall) goja.Value {
	return goja.Undefined()
}
