package catalog

import (
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	lessonPolicy     *bluemonday.Policy
	lessonPolicyOnce sync.Once
)

// policy allows user-generated markup plus class names, which lesson
// content uses for button-styled links.
func policy() *bluemonday.Policy {
	lessonPolicyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Globally()
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		lessonPolicy = p
	})
	return lessonPolicy
}

// SafeContent returns the lesson body sanitized for direct inclusion in a
// page. Scripts and event handlers are stripped.
func (l Lesson) SafeContent() template.HTML {
	if l.Content == "" {
		return ""
	}
	return template.HTML(policy().Sanitize(l.Content))
}
