package navigation

import (
	"net/url"

	"github.com/GriffinCanCode/Coursebook/backend/internal/catalog"
)

// Query parameters carrying tree state
const (
	ParamCourses = "courses"
	ParamModules = "open"
	ParamLesson  = "lesson"
)

// State is the sidebar state of one page view. It travels in the URL, so
// every link in the tree carries the state it leads to.
type State struct {
	Courses Expansion
	Modules Expansion
	Lesson  catalog.ID
}

// ParseState reads the tree state from query parameters
func ParseState(q url.Values) State {
	return State{
		Courses: Decode(q.Get(ParamCourses)),
		Modules: Decode(q.Get(ParamModules)),
		Lesson:  catalog.ID(q.Get(ParamLesson)),
	}
}

// ToggleCourse returns the state with course id flipped
func (s State) ToggleCourse(id catalog.ID) State {
	s.Courses = s.Courses.Toggle(id)
	return s
}

// ToggleModule returns the state with module id flipped
func (s State) ToggleModule(id catalog.ID) State {
	s.Modules = s.Modules.Toggle(id)
	return s
}

// Select returns the state with lessonID selected and its course and
// module expanded so the selection stays visible.
func (s State) Select(course catalog.Course, lessonID catalog.ID) State {
	s.Lesson = lessonID
	if module, ok := course.ModuleOf(lessonID); ok {
		s.Modules = s.Modules.With(module.ID)
		s.Courses = s.Courses.With(course.ID)
	}
	return s
}

// Initial returns the state for a freshly loaded course: its first
// live-preview lesson selected and that lesson's module expanded. The
// second result is false when the course has no live-preview lesson.
func Initial(course catalog.Course) (State, bool) {
	lesson, _, ok := course.FirstLivePreviewLesson()
	if !ok {
		return State{}, false
	}
	return State{}.Select(course, lesson.ID), true
}

// Linker builds hrefs for a page, keeping its own query parameters
type Linker struct {
	Path  string
	Extra url.Values
}

// Href returns the page URL carrying s
func (l Linker) Href(s State) string {
	q := url.Values{}
	for k, vs := range l.Extra {
		for _, v := range vs {
			if v != "" {
				q.Add(k, v)
			}
		}
	}
	if s.Courses.Len() > 0 {
		q.Set(ParamCourses, s.Courses.Encode())
	}
	if s.Modules.Len() > 0 {
		q.Set(ParamModules, s.Modules.Encode())
	}
	if s.Lesson != "" {
		q.Set(ParamLesson, s.Lesson.String())
	}

	if len(q) == 0 {
		return l.Path
	}
	return l.Path + "?" + q.Encode()
}

// CourseNode is a course row in the sidebar
type CourseNode struct {
	ID         catalog.ID
	Title      string
	Expanded   bool
	ToggleHref string
	Modules    []ModuleNode
}

// ModuleNode is a module row in the sidebar
type ModuleNode struct {
	ID         catalog.ID
	Title      string
	Expanded   bool
	ToggleHref string
	Lessons    []LessonNode
}

// LessonNode is a selectable lesson row
type LessonNode struct {
	ID          catalog.ID
	Title       string
	Selected    bool
	LivePreview bool
	Href        string
}

// Build returns the sidebar for several courses. Modules of collapsed
// courses are not built.
func Build(link Linker, courses []catalog.Course, state State) []CourseNode {
	nodes := make([]CourseNode, 0, len(courses))
	for _, c := range courses {
		node := CourseNode{
			ID:         c.ID,
			Title:      c.Title,
			Expanded:   state.Courses.Has(c.ID),
			ToggleHref: link.Href(state.ToggleCourse(c.ID)),
		}
		if node.Expanded {
			node.Modules = BuildModules(link, c, state)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// BuildModules returns the module rows of one course. Lessons of collapsed
// modules are not built.
func BuildModules(link Linker, course catalog.Course, state State) []ModuleNode {
	nodes := make([]ModuleNode, 0, len(course.Modules))
	for _, m := range course.Modules {
		node := ModuleNode{
			ID:         m.ID,
			Title:      m.Title,
			Expanded:   state.Modules.Has(m.ID),
			ToggleHref: link.Href(state.ToggleModule(m.ID)),
		}
		if node.Expanded {
			node.Lessons = make([]LessonNode, 0, len(m.Lessons))
			for _, l := range m.Lessons {
				node.Lessons = append(node.Lessons, LessonNode{
					ID:          l.ID,
					Title:       l.Title,
					Selected:    l.ID == state.Lesson,
					LivePreview: bool(l.LivePreview),
					Href:        link.Href(state.Select(course, l.ID)),
				})
			}
		}
		nodes = append(nodes, node)
	}
	return nodes
}
