package content

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Coursebook/backend/internal/catalog"
)

const yamlFixture = `
courses:
  - id: "c1"
    title: Physics
    modules:
      - id: "m1"
        title: Motion
        lessons:
          - id: "l1"
            title: Lab
            video_duration: "5:00"
            live_preview: true
`

const tomlFixture = `
[[simulations]]
id = "s1"
title = "Wave"
html_code = "<div id='w'></div>"
js_code = "console.log('hi')"
`

func TestFileLoadsYAMLAndTOML(t *testing.T) {
	fsys := fstest.MapFS{
		"courses.yaml":          {Data: []byte(yamlFixture)},
		"nested/sims.toml":      {Data: []byte(tomlFixture)},
		"nested/notes.md":       {Data: []byte("ignored")},
		"nested/more/extra.yml": {Data: []byte(`simulations: [{id: "s2", title: "Orbit", code: "<p>o</p>"}]`)},
	}

	f, err := NewFileFS(fsys)
	require.NoError(t, err)
	ctx := context.Background()

	courses, err := f.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	lesson, ok := courses[0].Lesson("l1")
	require.True(t, ok)
	assert.True(t, bool(lesson.LivePreview))
	assert.Equal(t, catalog.Text("5:00"), lesson.VideoDuration)

	sims, err := f.ListSimulations(ctx)
	require.NoError(t, err)
	require.Len(t, sims, 2)

	sim, err := f.GetSimulation(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Wave", sim.Title)
	assert.True(t, sim.IsSplit())

	course, err := f.GetCourse(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Physics", course.Title)
}

func TestFileNotFound(t *testing.T) {
	f, err := NewFileFS(fstest.MapFS{})
	require.NoError(t, err)

	_, err = f.GetCourse(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.GetSimulation(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileRejectsDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"a.toml": {Data: []byte(tomlFixture)},
		"b.toml": {Data: []byte(tomlFixture)},
	}
	_, err := NewFileFS(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `simulation "s1" already defined in a.toml`)
}

func TestFileReportsDecodeErrors(t *testing.T) {
	_, err := NewFileFS(fstest.MapFS{"bad.toml": {Data: []byte("[[simulations]\nid=")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode fixture bad.toml")
}

func TestFileReloadKeepsRecordsOnError(t *testing.T) {
	fsys := fstest.MapFS{"sims.toml": {Data: []byte(tomlFixture)}}
	f, err := NewFileFS(fsys)
	require.NoError(t, err)

	fsys["broken.yaml"] = &fstest.MapFile{Data: []byte("courses: [")}
	require.Error(t, f.Reload())

	sims, err := f.ListSimulations(context.Background())
	require.NoError(t, err)
	assert.Len(t, sims, 1)
}

func TestFileHonoursContext(t *testing.T) {
	f, err := NewFileFS(fstest.MapFS{"sims.toml": {Data: []byte(tomlFixture)}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.ListSimulations(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRepositoryFixturesLoad(t *testing.T) {
	f, err := NewFile("../../testdata/catalog")
	require.NoError(t, err)

	courses, err := f.ListCourses(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, courses)

	sims, err := f.ListSimulations(context.Background())
	require.NoError(t, err)
	for _, s := range sims {
		assert.False(t, s.IsEmpty(), "simulation %s has no content", s.ID)
	}
}

var (
	_ Source = (*File)(nil)
	_ Source = (*Directus)(nil)
)
