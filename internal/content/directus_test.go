package content

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Coursebook/backend/internal/catalog"
	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/tracing"
)

const coursesBody = `{"data":[{"id":1,"title":"Physics","modules":[{"id":"m1","title":"Motion",
"lessons":[{"id":7,"title":"Lab","video_duration":312,"live_preview":"true"}]}]}]}`

func newTestDirectus(t *testing.T, handler http.HandlerFunc, opts ...DirectusOption) *Directus {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewDirectus(DirectusConfig{
		URL:              srv.URL,
		Token:            "secret",
		Timeout:          2 * time.Second,
		BreakerThreshold: 2,
		BreakerCooldown:  time.Minute,
	}, opts...)
}

func TestDirectusListCourses(t *testing.T) {
	d := newTestDirectus(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/lms_courses", r.URL.Path)
		assert.Equal(t, "*,modules.*,modules.lessons.*", r.URL.Query().Get("fields"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(coursesBody))
	})

	courses, err := d.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)

	c := courses[0]
	assert.Equal(t, catalog.ID("1"), c.ID)
	require.Len(t, c.Modules, 1)
	require.Len(t, c.Modules[0].Lessons, 1)

	lesson := c.Modules[0].Lessons[0]
	assert.Equal(t, catalog.ID("7"), lesson.ID)
	assert.Equal(t, catalog.Text("312"), lesson.VideoDuration)
	assert.True(t, bool(lesson.LivePreview))
}

func TestDirectusGetCourse(t *testing.T) {
	d := newTestDirectus(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/lms_courses/42", r.URL.Path)
		assert.Equal(t, "*,modules.*,modules.lessons.*", r.URL.Query().Get("fields"))
		_, _ = w.Write([]byte(`{"data":{"id":42,"title":"Optics"}}`))
	})

	course, err := d.GetCourse(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "Optics", course.Title)
}

func TestDirectusSimulations(t *testing.T) {
	d := newTestDirectus(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("fields"))
		switch r.URL.Path {
		case "/items/lms_simulations":
			_, _ = w.Write([]byte(`{"data":[{"id":"s1","title":"Wave","html_code":"<div></div>"}]}`))
		case "/items/lms_simulations/s1":
			_, _ = w.Write([]byte(`{"data":{"id":"s1","title":"Wave","code":"<p>hi</p>"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	sims, err := d.ListSimulations(context.Background())
	require.NoError(t, err)
	require.Len(t, sims, 1)
	assert.Equal(t, "<div></div>", sims[0].HTMLCode)

	sim, err := d.GetSimulation(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", sim.Code)
}

func TestDirectusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, `{"errors":[]}`, ErrNotFound},
		{"server error", http.StatusInternalServerError, ``, ErrUnavailable},
		{"forbidden", http.StatusForbidden, `{"errors":[]}`, ErrUnavailable},
		{"not json", http.StatusOK, `<html>`, ErrBadEnvelope},
		{"no data member", http.StatusOK, `{"items":[]}`, ErrBadEnvelope},
		{"null data", http.StatusOK, `{"data":null}`, ErrBadEnvelope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDirectus(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := d.GetSimulation(context.Background(), "x")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDirectusUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	d := NewDirectus(DirectusConfig{URL: url, Timeout: time.Second})
	_, err := d.ListCourses(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDirectusDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	d := newTestDirectus(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := d.ListSimulations(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDirectusBreakerFailsFast(t *testing.T) {
	var calls atomic.Int32
	d := newTestDirectus(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 2; i++ {
		_, err := d.ListCourses(context.Background())
		require.ErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, resilience.StateOpen, d.BreakerState())

	_, err := d.ListCourses(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load(), "open breaker must not reach the backend")
}

func TestDirectusNotFoundKeepsBreakerClosed(t *testing.T) {
	d := newTestDirectus(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 5; i++ {
		_, err := d.GetCourse(context.Background(), "missing")
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, resilience.StateClosed, d.BreakerState())
}

func TestDirectusCanceledContext(t *testing.T) {
	d := newTestDirectus(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.ListCourses(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, resilience.StateClosed, d.BreakerState())
}

func TestDirectusCallerDeadlineKeepsBreakerClosed(t *testing.T) {
	d := newTestDirectus(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := d.ListSimulations(ctx)
		cancel()
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.NotErrorIs(t, err, resilience.ErrCircuitOpen)
	}
	assert.Equal(t, resilience.StateClosed, d.BreakerState())
}

func TestCallerGone(t *testing.T) {
	assert.True(t, callerGone(context.Canceled))
	assert.True(t, callerGone(context.DeadlineExceeded))
	assert.False(t, callerGone(fmt.Errorf("%w: list_courses: %w", ErrUnavailable, context.DeadlineExceeded)))
	assert.False(t, callerGone(ErrUnavailable))
}

func TestDirectusRecordsMetrics(t *testing.T) {
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	d := newTestDirectus(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}, WithMetrics(metrics))

	sims, err := d.ListSimulations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sims)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ContentCalls.WithLabelValues("list_simulations", "success")))

	_, err = d.GetSimulation(context.Background(), "gone")
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.Snapshot().ContentErrors)
}

func TestDirectusForwardsTrace(t *testing.T) {
	var traceID, parentID string
	tracer := tracing.New("test", nil, 0)
	defer tracer.Close()

	d := newTestDirectus(t, func(w http.ResponseWriter, r *http.Request) {
		traceID = r.Header.Get(tracing.TraceHeader)
		parentID = r.Header.Get(tracing.SpanHeader)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}, WithTracer(tracer))

	ctx := tracing.WithRemote(context.Background(), "trc_page", "spn_page")
	_, err := d.ListCourses(ctx)
	require.NoError(t, err)

	assert.Equal(t, "trc_page", traceID)
	assert.NotEqual(t, "spn_page", parentID, "the call runs in its own span")
	assert.NotEmpty(t, parentID)
}
