package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/Coursebook/backend/internal/catalog"
	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/tracing"
)

// Directus collections and the field expansion that inlines modules and lessons
const (
	coursesPath     = "/items/lms_courses"
	simulationsPath = "/items/lms_simulations"
	nestedFields    = "*,modules.*,modules.lessons.*"
)

// DirectusConfig configures the Directus source
type DirectusConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
	// RPS caps outgoing requests per second; zero means unlimited
	RPS float64
	// BreakerThreshold is the number of consecutive failures that opens the breaker
	BreakerThreshold uint32
	// BreakerCooldown is how long calls fail fast once the breaker opened
	BreakerCooldown time.Duration
}

// Directus reads catalog records from a Directus items API
type Directus struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
	logger  *zap.Logger
	mu      sync.RWMutex
}

// DirectusOption customises a Directus source
type DirectusOption func(*Directus)

// WithMetrics records every backend call
func WithMetrics(m *monitoring.Metrics) DirectusOption {
	return func(d *Directus) { d.metrics = m }
}

// WithTracer opens a span per backend call and forwards the trace headers
func WithTracer(t *tracing.Tracer) DirectusOption {
	return func(d *Directus) { d.tracer = t }
}

// WithLogger sets the logger used for breaker transitions
func WithLogger(l *zap.Logger) DirectusOption {
	return func(d *Directus) { d.logger = l }
}

// NewDirectus creates a Directus source. Requests are not retried: a failed
// call is reported to the caller as ErrUnavailable.
func NewDirectus(cfg DirectusConfig, opts ...DirectusOption) *Directus {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	// Pooled transport only; retries stay off on both layers
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "Coursebook/1.0")
	restyClient.SetTransport(retryClient.HTTPClient.Transport)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	d := &Directus{
		resty:   restyClient,
		limiter: rate.NewLimiter(rate.Inf, 0),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.SetRateLimit(cfg.RPS)

	d.breaker = resilience.New("directus", resilience.Settings{
		Threshold: cfg.BreakerThreshold,
		Cooldown:  cfg.BreakerCooldown,
		// A missing record or a caller giving up says nothing about backend health
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, ErrNotFound) && !callerGone(err)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			d.logger.Warn("Content backend breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return d
}

// SetRateLimit configures rate limiting (requests per second)
func (d *Directus) SetRateLimit(rps float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if rps <= 0 {
		d.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	d.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// BreakerState returns the current circuit breaker state
func (d *Directus) BreakerState() resilience.State {
	return d.breaker.State()
}

// ListCourses returns every course with its modules and lessons inlined
func (d *Directus) ListCourses(ctx context.Context) ([]catalog.Course, error) {
	return fetch[[]catalog.Course](ctx, d, call{op: "list_courses", path: coursesPath, nested: true})
}

// GetCourse returns one course with its modules and lessons inlined
func (d *Directus) GetCourse(ctx context.Context, id catalog.ID) (catalog.Course, error) {
	return fetch[catalog.Course](ctx, d, call{op: "get_course", path: coursesPath, id: id, nested: true})
}

// ListSimulations returns every simulation
func (d *Directus) ListSimulations(ctx context.Context) ([]catalog.Simulation, error) {
	return fetch[[]catalog.Simulation](ctx, d, call{op: "list_simulations", path: simulationsPath})
}

// GetSimulation returns one simulation
func (d *Directus) GetSimulation(ctx context.Context, id catalog.ID) (catalog.Simulation, error) {
	return fetch[catalog.Simulation](ctx, d, call{op: "get_simulation", path: simulationsPath, id: id})
}

type call struct {
	op     string
	path   string
	id     catalog.ID
	nested bool
}

// envelope is the Directus response wrapper
type envelope[T any] struct {
	Data *T `json:"data"`
}

// fetch performs one GET through the limiter and breaker and decodes the
// envelope's data member.
func fetch[T any](ctx context.Context, d *Directus, c call) (out T, err error) {
	timer := monitoring.NewTimer(d.metrics, c.op)
	defer func() { timer.Stop(err) }()
	if d.tracer != nil {
		var span *tracing.Span
		span, ctx = d.tracer.Start(ctx, "content."+c.op)
		span.SetTag("content.path", c.path)
		defer func() { d.tracer.Finish(span, err) }()
	}

	req, err := d.request(ctx)
	if err != nil {
		return out, err
	}
	path := c.path
	if c.id != "" {
		path += "/{id}"
		req.SetPathParam("id", c.id.String())
	}
	if c.nested {
		req.SetQueryParam("fields", nestedFields)
	}

	var resp *resty.Response
	err = d.breaker.Execute(func() error {
		var callErr error
		resp, callErr = req.Get(path)
		if callErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %s: %w", ErrUnavailable, c.op, callErr)
		}
		return statusError(c.op, resp.StatusCode())
	})
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return out, fmt.Errorf("%w: %s: %w", ErrUnavailable, c.op, err)
	case err != nil:
		return out, err
	}

	var env envelope[T]
	if err := sonic.Unmarshal(resp.Body(), &env); err != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrBadEnvelope, c.op, err)
	}
	if env.Data == nil {
		return out, fmt.Errorf("%w: %s: missing data", ErrBadEnvelope, c.op)
	}
	return *env.Data, nil
}

func (d *Directus) request(ctx context.Context) (*resty.Request, error) {
	d.mu.RLock()
	limiter := d.limiter
	d.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	req := d.resty.R().SetContext(ctx)
	tracing.Inject(ctx, req.Header)
	return req, nil
}

// callerGone reports errors caused by the caller's own context. Those are
// returned unwrapped; backend timeouts are wrapped in ErrUnavailable.
func callerGone(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func statusError(op string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	default:
		return fmt.Errorf("%w: %s: status %d", ErrUnavailable, op, status)
	}
}
