package http

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/GriffinCanCode/Coursebook/backend/internal/catalog"
	"github.com/GriffinCanCode/Coursebook/backend/internal/navigation"
	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox/frames"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index", "courses", "live_preview", "simulations"}

type pages struct {
	set map[string]*template.Template
}

// loadPages parses the shared layout once per page so each page can define
// its own content block.
func loadPages() (*pages, error) {
	base, err := template.New("layout.html").ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	p := &pages{set: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		p.set[name] = t
	}
	return p, nil
}

func (h *Handlers) page(c *gin.Context, status int, name string, data any) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Render(status, render.HTML{Template: h.pages.set[name], Name: "layout", Data: data})
}

// lessonView is the content pane of a selected lesson
type lessonView struct {
	Title         string
	VideoURL      string
	VideoDuration string
	Transcript    string
	Content       template.HTML
	LivePreview   bool
}

func newLessonView(l catalog.Lesson) *lessonView {
	return &lessonView{
		Title:         l.Title,
		VideoURL:      l.VideoURL,
		VideoDuration: l.VideoDuration.String(),
		Transcript:    l.VideoTranscript,
		Content:       l.SafeContent(),
		LivePreview:   bool(l.LivePreview),
	}
}

type indexView struct {
	Title string
}

// Index links the three views
func (h *Handlers) Index(c *gin.Context) {
	h.page(c, http.StatusOK, "index", indexView{Title: "Coursebook"})
}

type coursesView struct {
	Title   string
	Query   string
	Total   int
	Courses []navigation.CourseNode
	Lesson  *lessonView
	Error   string
}

// CoursesPage lists courses with a searchable sidebar and the selected lesson
func (h *Handlers) CoursesPage(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	view := coursesView{Title: "Courses", Query: q}

	courses, err := h.source.ListCourses(c.Request.Context())
	if err != nil {
		status, msg := statusFor(err)
		h.logFailure(c, status, err)
		view.Error = msg
		h.page(c, status, "courses", view)
		return
	}

	state := navigation.ParseState(c.Request.URL.Query())
	filtered := catalog.FilterCourses(courses, q)
	link := navigation.Linker{Path: "/courses", Extra: url.Values{"q": {q}}}

	view.Total = len(filtered)
	view.Courses = navigation.Build(link, filtered, state)

	status := http.StatusOK
	if state.Lesson != "" {
		if lesson, ok := findLesson(courses, state.Lesson); ok {
			view.Lesson = newLessonView(lesson)
		} else {
			status = http.StatusNotFound
			view.Error = "Lesson not found"
		}
	}
	h.page(c, status, "courses", view)
}

func findLesson(courses []catalog.Course, id catalog.ID) (catalog.Lesson, bool) {
	for _, course := range courses {
		if l, ok := course.Lesson(id); ok {
			return l, true
		}
	}
	return catalog.Lesson{}, false
}

type livePreviewView struct {
	Title       string
	Query       string
	Course      *catalog.Course
	Modules     []navigation.ModuleNode
	Lesson      *lessonView
	Suggestions []string
	Error       string
}

// LivePreviewPage opens the first course whose title matches and selects
// its first live-preview lesson
func (h *Handlers) LivePreviewPage(c *gin.Context) {
	ctx := c.Request.Context()
	title := strings.TrimSpace(c.Query("title"))
	view := livePreviewView{Title: "Live Preview", Query: title}

	courses, err := h.source.ListCourses(ctx)
	if err != nil {
		status, msg := statusFor(err)
		h.logFailure(c, status, err)
		view.Error = msg
		h.page(c, status, "live_preview", view)
		return
	}
	for _, course := range courses {
		view.Suggestions = append(view.Suggestions, course.Title)
	}

	if title == "" {
		if _, searched := c.GetQuery("title"); searched {
			view.Error = "Please enter a course title"
		}
		h.page(c, http.StatusOK, "live_preview", view)
		return
	}

	match, ok := catalog.FindCourse(courses, title)
	if !ok {
		view.Error = "No course found with that title"
		h.page(c, http.StatusNotFound, "live_preview", view)
		return
	}

	course, err := h.source.GetCourse(ctx, match.ID)
	if err != nil {
		status, msg := statusFor(err)
		h.logFailure(c, status, err)
		view.Error = msg
		h.page(c, status, "live_preview", view)
		return
	}
	view.Course = &course

	state := navigation.ParseState(c.Request.URL.Query())
	if state.Lesson == "" && state.Modules.Len() == 0 {
		initial, ok := navigation.Initial(course)
		if !ok {
			view.Error = "No live preview lessons found in this course"
		}
		state = initial
	}

	link := navigation.Linker{Path: "/live-preview", Extra: url.Values{"title": {title}}}
	view.Modules = navigation.BuildModules(link, course, state)
	if lesson, ok := course.Lesson(state.Lesson); ok {
		view.Lesson = newLessonView(lesson)
	}
	h.page(c, http.StatusOK, "live_preview", view)
}

type simulationItem struct {
	ID          catalog.ID
	Title       string
	Description string
	Selected    bool
	Href        string
}

type simulationFrame struct {
	Title       string
	Description string
	Src         string
	Sandbox     string
	ReleaseURL  string
}

type simulationsView struct {
	Title       string
	Query       string
	Total       int
	Simulations []simulationItem
	Frame       *simulationFrame
	Error       string
}

// SimulationsPage lists simulations and shows the selected one in the
// viewer's simulation slot. Without a selection the first listed
// simulation is shown.
func (h *Handlers) SimulationsPage(c *gin.Context) {
	ctx := c.Request.Context()
	q := strings.TrimSpace(c.Query("q"))
	selected := catalog.ID(c.Query("sim"))
	view := simulationsView{Title: "Simulations", Query: q}

	sims, err := h.source.ListSimulations(ctx)
	if err != nil {
		status, msg := statusFor(err)
		h.logFailure(c, status, err)
		view.Error = msg
		h.page(c, status, "simulations", view)
		return
	}

	filtered := catalog.FilterSimulations(sims, q)
	if selected == "" && len(filtered) > 0 {
		selected = filtered[0].ID
	}

	view.Total = len(sims)
	for _, s := range filtered {
		view.Simulations = append(view.Simulations, simulationItem{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Selected:    s.ID == selected,
			Href:        simulationsHref(q, s.ID),
		})
	}

	key := slotKey(viewer(c), SlotSimulation)
	if selected == "" {
		// Nothing to show: the slot must not keep showing an old unit
		if err := h.frames.Release(key); err != nil {
			h.logFailure(c, http.StatusServiceUnavailable, err)
		}
		h.page(c, http.StatusOK, "simulations", view)
		return
	}

	sim, ok := catalog.FindSimulation(sims, selected)
	if !ok {
		view.Error = "Simulation not found"
		h.page(c, http.StatusNotFound, "simulations", view)
		return
	}

	token, err := h.frames.Present(ctx, key, h.compose(sim))
	if err != nil {
		status, msg := statusFor(err)
		h.logFailure(c, status, err)
		view.Error = msg
		h.page(c, status, "simulations", view)
		return
	}

	view.Frame = &simulationFrame{
		Title:       sim.Title,
		Description: sim.Description,
		Src:         "/frames/" + token.String(),
		Sandbox:     frames.IframeSandbox,
		ReleaseURL:  "/frames/release?slot=" + SlotSimulation,
	}
	h.page(c, http.StatusOK, "simulations", view)
}

func simulationsHref(q string, id catalog.ID) string {
	v := url.Values{}
	if q != "" {
		v.Set("q", q)
	}
	v.Set("sim", id.String())
	return "/simulations?" + v.Encode()
}
