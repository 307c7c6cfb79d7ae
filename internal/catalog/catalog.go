package catalog

import (
	"strings"

	"github.com/bytedance/sonic"
)

// ID is a content record identifier. The content backend sends numeric
// primary keys for some collections and UUID strings for others; both are
// kept as their decimal or string form.
type ID string

// UnmarshalJSON accepts a JSON string, number or null
func (id *ID) UnmarshalJSON(b []byte) error {
	s, err := scalar(b)
	if err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

func (id ID) String() string { return string(id) }

// Text is a free-form scalar the backend may send as a string or a number
type Text string

// UnmarshalJSON accepts a JSON string, number or null
func (t *Text) UnmarshalJSON(b []byte) error {
	s, err := scalar(b)
	if err != nil {
		return err
	}
	*t = Text(s)
	return nil
}

func (t Text) String() string { return string(t) }

// Flag is a boolean the backend may send as a bool, a string or a number.
// Strings follow script truthiness except for the usual false words.
type Flag bool

// UnmarshalJSON accepts true/false, numbers, strings and null
func (f *Flag) UnmarshalJSON(b []byte) error {
	s, err := scalar(b)
	if err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0", "no", "off":
		*f = false
	default:
		*f = true
	}
	return nil
}

// scalar decodes a JSON string, number, bool or null into its text form
func scalar(b []byte) (string, error) {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return "", nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := sonic.UnmarshalString(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return raw, nil
}

// Course is a top-level catalog entry
type Course struct {
	ID              ID       `json:"id" yaml:"id" toml:"id"`
	Title           string   `json:"title" yaml:"title" toml:"title"`
	Slug            string   `json:"slug" yaml:"slug" toml:"slug"`
	Status          string   `json:"status" yaml:"status" toml:"status"`
	Description     string   `json:"description" yaml:"description" toml:"description"`
	DescriptionLong string   `json:"description_long" yaml:"description_long" toml:"description_long"`
	Modules         []Module `json:"modules" yaml:"modules" toml:"modules"`
}

// Module groups lessons inside a course
type Module struct {
	ID          ID       `json:"id" yaml:"id" toml:"id"`
	Title       string   `json:"title" yaml:"title" toml:"title"`
	Description string   `json:"description" yaml:"description" toml:"description"`
	Lessons     []Lesson `json:"lessons" yaml:"lessons" toml:"lessons"`
}

// Lesson is one unit of teaching content
type Lesson struct {
	ID              ID     `json:"id" yaml:"id" toml:"id"`
	Title           string `json:"title" yaml:"title" toml:"title"`
	Slug            string `json:"slug" yaml:"slug" toml:"slug"`
	VideoURL        string `json:"video_url" yaml:"video_url" toml:"video_url"`
	VideoDuration   Text   `json:"video_duration" yaml:"video_duration" toml:"video_duration"`
	VideoTranscript string `json:"video_transcript" yaml:"video_transcript" toml:"video_transcript"`
	Content         string `json:"content" yaml:"content" toml:"content"`
	LivePreview     Flag   `json:"live_preview" yaml:"live_preview" toml:"live_preview"`
}

// Simulation is an interactive unit. Records come in two shapes: split
// html/css/js fields, or one complete document in Code. See Unit.
type Simulation struct {
	ID          ID     `json:"id" yaml:"id" toml:"id"`
	Title       string `json:"title" yaml:"title" toml:"title"`
	Description string `json:"description" yaml:"description" toml:"description"`
	Code        string `json:"code" yaml:"code" toml:"code"`
	HTMLCode    string `json:"html_code" yaml:"html_code" toml:"html_code"`
	CSSCode     string `json:"css_code" yaml:"css_code" toml:"css_code"`
	JSCode      string `json:"js_code" yaml:"js_code" toml:"js_code"`
}

// Lesson returns the lesson with the given id
func (c Course) Lesson(id ID) (Lesson, bool) {
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if l.ID == id {
				return l, true
			}
		}
	}
	return Lesson{}, false
}

// ModuleOf returns the module holding the lesson
func (c Course) ModuleOf(lessonID ID) (Module, bool) {
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if l.ID == lessonID {
				return m, true
			}
		}
	}
	return Module{}, false
}

// FirstLivePreviewLesson returns the first live-preview lesson in module
// order, together with its module
func (c Course) FirstLivePreviewLesson() (Lesson, Module, bool) {
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if l.LivePreview {
				return l, m, true
			}
		}
	}
	return Lesson{}, Module{}, false
}

// HasLivePreview reports whether any lesson of m is a live preview
func (m Module) HasLivePreview() bool {
	for _, l := range m.Lessons {
		if l.LivePreview {
			return true
		}
	}
	return false
}
