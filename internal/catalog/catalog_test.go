package catalog

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonDecodingToleratesBackendShapes(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantID      ID
		wantPreview Flag
		wantDur     Text
	}{
		{
			name:        "boolean flag and numeric id",
			input:       `{"id": 7, "live_preview": true, "video_duration": "12:30"}`,
			wantID:      "7",
			wantPreview: true,
			wantDur:     "12:30",
		},
		{
			name:        "string flag",
			input:       `{"id": "l-1", "live_preview": "true"}`,
			wantID:      "l-1",
			wantPreview: true,
		},
		{
			name:        "false string",
			input:       `{"id": "l-2", "live_preview": "false"}`,
			wantID:      "l-2",
			wantPreview: false,
		},
		{
			name:        "null fields",
			input:       `{"id": null, "live_preview": null, "video_duration": null}`,
			wantPreview: false,
		},
		{
			name:        "numeric duration",
			input:       `{"id": 3, "live_preview": 0, "video_duration": 95}`,
			wantID:      "3",
			wantPreview: false,
			wantDur:     "95",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lesson Lesson
			require.NoError(t, sonic.UnmarshalString(tt.input, &lesson))
			assert.Equal(t, tt.wantID, lesson.ID)
			assert.Equal(t, tt.wantPreview, lesson.LivePreview)
			assert.Equal(t, tt.wantDur, lesson.VideoDuration)
		})
	}
}

func testCourse() Course {
	return Course{
		ID:    "c1",
		Title: "Intro to Physics",
		Modules: []Module{
			{
				ID:    "m1",
				Title: "Kinematics",
				Lessons: []Lesson{
					{ID: "l1", Title: "Velocity"},
					{ID: "l2", Title: "Acceleration"},
				},
			},
			{
				ID:    "m2",
				Title: "Forces",
				Lessons: []Lesson{
					{ID: "l3", Title: "Newton"},
					{ID: "l4", Title: "Friction lab", LivePreview: true},
				},
			},
			{
				ID:    "m3",
				Title: "Energy",
				Lessons: []Lesson{
					{ID: "l5", Title: "Pendulum lab", LivePreview: true},
				},
			},
		},
	}
}

func TestCourseLookups(t *testing.T) {
	course := testCourse()

	lesson, ok := course.Lesson("l3")
	require.True(t, ok)
	assert.Equal(t, "Newton", lesson.Title)

	_, ok = course.Lesson("missing")
	assert.False(t, ok)

	module, ok := course.ModuleOf("l2")
	require.True(t, ok)
	assert.Equal(t, ID("m1"), module.ID)

	_, ok = course.ModuleOf("missing")
	assert.False(t, ok)
}

func TestFirstLivePreviewLesson(t *testing.T) {
	lesson, module, ok := testCourse().FirstLivePreviewLesson()
	require.True(t, ok)
	assert.Equal(t, ID("l4"), lesson.ID)
	assert.Equal(t, ID("m2"), module.ID)

	_, _, ok = Course{Modules: []Module{{ID: "m", Lessons: []Lesson{{ID: "l"}}}}}.FirstLivePreviewLesson()
	assert.False(t, ok)
}

func TestModuleHasLivePreview(t *testing.T) {
	course := testCourse()
	assert.False(t, course.Modules[0].HasLivePreview())
	assert.True(t, course.Modules[1].HasLivePreview())
}

func TestLessonSafeContent(t *testing.T) {
	lesson := Lesson{Content: `<h3>Intro</h3><p onclick="steal()">Read <a class="btn" href="https://example.com/doc">this</a></p><script>alert(1)</script>`}

	safe := string(lesson.SafeContent())
	assert.Contains(t, safe, "<h3>Intro</h3>")
	assert.Contains(t, safe, `class="btn"`)
	assert.NotContains(t, safe, "onclick")
	assert.NotContains(t, safe, "<script>")
	assert.NotContains(t, safe, "alert(1)")

	assert.Empty(t, Lesson{}.SafeContent())
}
