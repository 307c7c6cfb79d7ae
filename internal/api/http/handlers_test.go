package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Coursebook/backend/internal/catalog"
	"github.com/GriffinCanCode/Coursebook/backend/internal/content"
	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox/frames"
	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox/headless"
)

const fixture = `
courses:
  - id: "c1"
    title: Introductory Physics
    description: Motion and forces
    modules:
      - id: "m1"
        title: Kinematics
        lessons:
          - id: "l1"
            title: Velocity
            video_url: https://videos.example.com/v.mp4
            video_duration: "8:42"
            video_transcript: Velocity is speed with direction.
            content: <p>Velocity <strong>matters</strong></p><script>alert(1)</script>
      - id: "m2"
        title: Forces
        lessons:
          - id: "l2"
            title: Friction lab
            live_preview: true
  - id: "c2"
    title: Chemistry
    modules:
      - id: "m3"
        title: Atoms
        lessons:
          - id: "l3"
            title: Periodic table
simulations:
  - id: "s1"
    title: Pendulum
    description: Swinging mass
    html_code: <p id="out">Pendulum ready</p>
    css_code: "p { color: red }"
    js_code: document.getElementById("out").textContent = "swinging";
  - id: "s2"
    title: Orbit
    html_code: <p>Orbit ready</p>
  - id: "s3"
    title: Broken wave
    html_code: <div id="wave"></div>
    js_code: missingFunction();
`

var frameSrc = regexp.MustCompile(`src="/frames/(frm_[0-9A-Z]+)"`)

type testEnv struct {
	router  *gin.Engine
	store   *frames.Store
	metrics *monitoring.Metrics
}

func newTestEnv(t *testing.T, src content.Source, frameCfg frames.Config) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if src == nil {
		f, err := content.NewFileFS(fstest.MapFS{"catalog.yaml": {Data: []byte(fixture)}})
		require.NoError(t, err)
		src = f
	}

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	store := frames.NewStore(frameCfg, frames.WithObserver(metrics), frames.WithLiveGauge(metrics.SetFramesLive))
	t.Cleanup(store.Close)

	cfg := headless.DefaultConfig()
	cfg.Timeout = time.Second
	h, err := NewHandlers(src, store, metrics, zap.NewNop(), cfg)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/", h.Index)
	router.GET("/health", h.Health)
	router.GET("/courses", h.CoursesPage)
	router.GET("/live-preview", h.LivePreviewPage)
	router.GET("/simulations", h.SimulationsPage)
	router.GET("/frames/:token", h.Frame)
	router.POST("/frames/release", h.ReleaseFrame)
	api := router.Group("/api")
	api.GET("/courses", h.ListCourses)
	api.GET("/courses/:id", h.GetCourse)
	api.GET("/simulations", h.ListSimulations)
	api.GET("/simulations/:id/document", h.SimulationDocument)
	api.POST("/simulations/:id/preflight", h.PreflightSimulation)

	return &testEnv{router: router, store: store, metrics: metrics}
}

func (e *testEnv) do(method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func viewerCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == ViewerCookie {
			return c
		}
	}
	t.Fatal("no viewer cookie issued")
	return nil
}

func frameToken(t *testing.T, body string) string {
	t.Helper()
	m := frameSrc.FindStringSubmatch(body)
	require.Len(t, m, 2, "page has no frame")
	return m[1]
}

type failingSource struct{ err error }

func (f failingSource) ListCourses(context.Context) ([]catalog.Course, error) { return nil, f.err }
func (f failingSource) GetCourse(context.Context, catalog.ID) (catalog.Course, error) {
	return catalog.Course{}, f.err
}
func (f failingSource) ListSimulations(context.Context) ([]catalog.Simulation, error) {
	return nil, f.err
}
func (f failingSource) GetSimulation(context.Context, catalog.ID) (catalog.Simulation, error) {
	return catalog.Simulation{}, f.err
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})
	w := env.do("GET", "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"frames_live":0`)
}

func TestIndexPage(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})
	w := env.do("GET", "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	for _, link := range []string{`href="/courses"`, `href="/live-preview"`, `href="/simulations"`} {
		assert.Contains(t, w.Body.String(), link)
	}
}

func TestCoursesPage(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	w := env.do("GET", "/courses")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Introductory Physics")
	assert.Contains(t, body, "Chemistry")
	assert.NotContains(t, body, "Kinematics", "collapsed course hides its modules")
	assert.Contains(t, body, `href="/courses?courses=c1"`)

	w = env.do("GET", "/courses?courses=c1&open=m1&lesson=l1")
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Contains(t, body, "Kinematics")
	assert.Contains(t, body, `class="selected"`)
	assert.Contains(t, body, "<strong>matters</strong>")
	assert.NotContains(t, body, "alert(1)", "lesson content is sanitised")
	assert.Contains(t, body, "Velocity is speed with direction.")
	assert.Contains(t, body, "8:42")
}

func TestCoursesPageSearch(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	w := env.do("GET", "/courses?q=CHEM")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Chemistry")
	assert.NotContains(t, w.Body.String(), "Introductory Physics")
	assert.Contains(t, w.Body.String(), `href="/courses?courses=c2&amp;q=CHEM"`)
}

func TestCoursesPageUnknownLesson(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	w := env.do("GET", "/courses?lesson=nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Lesson not found")
}

func TestLivePreviewPage(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	w := env.do("GET", "/live-preview?title=physics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Friction lab")
	assert.Contains(t, body, `aria-current="page"`)
	assert.NotContains(t, body, ">Velocity<", "module without live preview stays collapsed")
	assert.Contains(t, body, "Live preview")
}

func TestLivePreviewPageMessages(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	tests := []struct {
		target string
		status int
		want   string
	}{
		{"/live-preview", http.StatusOK, "Enter a course title"},
		{"/live-preview?title=", http.StatusOK, "Please enter a course title"},
		{"/live-preview?title=biology", http.StatusNotFound, "No course found with that title"},
		{"/live-preview?title=chem", http.StatusOK, "No live preview lessons found in this course"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := env.do("GET", tt.target)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestSimulationsPageList(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	w := env.do("GET", "/simulations?q=orb")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Orbit")
	assert.NotContains(t, w.Body.String(), "Pendulum")
	viewerCookie(t, w)

	// The only match is shown without being clicked
	frame := env.do("GET", "/frames/"+frameToken(t, w.Body.String()))
	require.Equal(t, http.StatusOK, frame.Code)
	assert.Contains(t, frame.Body.String(), "<p>Orbit ready</p>")
}

func TestSimulationsPageSelectsFirst(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	w := env.do("GET", "/simulations")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `sandbox="allow-scripts"`)

	frame := env.do("GET", "/frames/"+frameToken(t, w.Body.String()))
	require.Equal(t, http.StatusOK, frame.Code)
	assert.Contains(t, frame.Body.String(), `<p id="out">Pendulum ready</p>`)
	assert.Equal(t, 1, env.store.Live())
}

func TestSimulationFrameLifecycle(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	w := env.do("GET", "/simulations?sim=s1")
	require.Equal(t, http.StatusOK, w.Code)
	cookie := viewerCookie(t, w)
	body := w.Body.String()
	assert.Contains(t, body, `sandbox="allow-scripts"`)
	assert.Contains(t, body, "sendBeacon")
	first := frameToken(t, body)

	frame := env.do("GET", "/frames/"+first)
	require.Equal(t, http.StatusOK, frame.Code)
	assert.Equal(t, frames.ContentSecurityPolicy, frame.Header().Get("Content-Security-Policy"))
	assert.Contains(t, frame.Body.String(), `<p id="out">Pendulum ready</p>`)
	assert.Contains(t, frame.Body.String(), "p { color: red }")

	// Selecting another unit replaces the frame; the old token is revoked
	w = env.do("GET", "/simulations?sim=s2", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	second := frameToken(t, w.Body.String())
	assert.NotEqual(t, first, second)
	assert.Equal(t, http.StatusGone, env.do("GET", "/frames/"+first).Code)

	frame = env.do("GET", "/frames/"+second)
	require.Equal(t, http.StatusOK, frame.Code)
	assert.Contains(t, frame.Body.String(), "Orbit ready")
	assert.NotContains(t, frame.Body.String(), "Pendulum")
	assert.Equal(t, 1, env.store.Live())

	// Host teardown, twice
	assert.Equal(t, http.StatusNoContent, env.do("POST", "/frames/release?slot=simulation", cookie).Code)
	assert.Equal(t, http.StatusNoContent, env.do("POST", "/frames/release?slot=simulation", cookie).Code)
	assert.Equal(t, http.StatusGone, env.do("GET", "/frames/"+second).Code)
	assert.Equal(t, 0, env.store.Live())
}

func TestSimulationsPageWithoutMatchesReleases(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	w := env.do("GET", "/simulations?sim=s1")
	cookie := viewerCookie(t, w)
	token := frameToken(t, w.Body.String())

	w = env.do("GET", "/simulations?q=nothing-matches", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<iframe")
	assert.Equal(t, http.StatusGone, env.do("GET", "/frames/"+token).Code)
	assert.Equal(t, 0, env.store.Live())
}

func TestViewersHaveIndependentSlots(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	a := env.do("GET", "/simulations?sim=s1")
	b := env.do("GET", "/simulations?sim=s2")
	tokenA := frameToken(t, a.Body.String())
	tokenB := frameToken(t, b.Body.String())

	assert.Equal(t, http.StatusOK, env.do("GET", "/frames/"+tokenA).Code)
	assert.Equal(t, http.StatusOK, env.do("GET", "/frames/"+tokenB).Code)
	assert.Equal(t, 2, env.store.Live())
}

func TestSimulationsPageContextUnavailable(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{MaxFrames: 1})

	require.Equal(t, http.StatusOK, env.do("GET", "/simulations?sim=s1").Code)

	w := env.do("GET", "/simulations?sim=s2")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "The simulation could not be displayed.")
	assert.NotContains(t, w.Body.String(), "<iframe")
}

func TestSimulationsPageUnknownSimulation(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	w := env.do("GET", "/simulations?sim=nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Simulation not found")
}

func TestFrameErrors(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	assert.Equal(t, http.StatusNotFound, env.do("GET", "/frames/not-a-token").Code)
	assert.Equal(t, http.StatusGone, env.do("GET", "/frames/frm_01ARZ3NDEKTSV4RRFFQ69G5FAV").Code)
}

func TestReleaseWithoutViewer(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	w := env.do("POST", "/frames/release")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Result().Cookies(), "release never issues a viewer")
}

func TestContentUnavailable(t *testing.T) {
	env := newTestEnv(t, failingSource{err: content.ErrUnavailable}, frames.Config{})

	for _, target := range []string{"/courses", "/live-preview?title=x", "/simulations"} {
		w := env.do("GET", target)
		assert.Equal(t, http.StatusBadGateway, w.Code, target)
		assert.Contains(t, w.Body.String(), "content service is unavailable", target)
	}

	w := env.do("GET", "/api/courses")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"The content service is unavailable. Please try again later."}`, w.Body.String())
}

func TestAPICourses(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	w := env.do("GET", "/api/courses?q=phys")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Courses []catalog.Course `json:"courses"`
		Count   int              `json:"count"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "Introductory Physics", list.Courses[0].Title)

	w = env.do("GET", "/api/courses/c2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Chemistry"`)

	assert.Equal(t, http.StatusNotFound, env.do("GET", "/api/courses/zzz").Code)
}

func TestAPISimulations(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	w := env.do("GET", "/api/simulations?q=wave")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = env.do("GET", "/api/simulations/s1/document")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "<!DOCTYPE html>"))
	assert.Contains(t, w.Body.String(), `<p id="out">Pendulum ready</p>`)

	assert.Equal(t, http.StatusNotFound, env.do("GET", "/api/simulations/nope/document").Code)
}

func TestAPIPreflight(t *testing.T) {
	env := newTestEnv(t, nil, frames.Config{})

	w := env.do("POST", "/api/simulations/s1/preflight")
	require.Equal(t, http.StatusOK, w.Code)
	var ok struct {
		ContentFailed bool            `json:"content_failed"`
		Render        headless.Render `json:"render"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &ok))
	assert.False(t, ok.ContentFailed)
	assert.Contains(t, ok.Render.Body, "swinging")

	w = env.do("POST", "/api/simulations/s3/preflight")
	require.Equal(t, http.StatusOK, w.Code, "content failure is not a request failure")
	var broken struct {
		ContentFailed bool            `json:"content_failed"`
		Render        headless.Render `json:"render"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &broken))
	assert.True(t, broken.ContentFailed)
	require.Len(t, broken.Render.Notices, 1)
	assert.Contains(t, broken.Render.Notices[0], "missingFunction")

	assert.Equal(t, 0, env.store.Live(), "preflight never touches browser frames")
}
