package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox"
)

func TestSimulationUnitSplitFields(t *testing.T) {
	sim := Simulation{
		ID:       "s1",
		Title:    "Demo",
		Code:     "<p>ignored</p>",
		HTMLCode: "<p>Hi</p>",
		CSSCode:  "p{color:red}",
		JSCode:   "throw new Error('x')",
	}

	assert.Equal(t, sandbox.Unit{
		ID:     "s1",
		Title:  "Demo",
		Markup: "<p>Hi</p>",
		Style:  "p{color:red}",
		Script: "throw new Error('x')",
	}, sim.Unit())
	assert.True(t, sim.IsSplit())
}

func TestSimulationUnitFromDocument(t *testing.T) {
	sim := Simulation{
		ID:    "pendulum",
		Title: "Pendulum",
		Code: `<!DOCTYPE html>
<html>
<head>
  <title>Pendulum</title>
  <link rel="stylesheet" href="https://cdn.example.com/base.css">
  <script src="https://cdn.example.com/lib.js"></script>
  <style>body { margin: 0 }</style>
</head>
<body>
  <canvas id="c"></canvas>
  <script>var c = document.getElementById('c');</script>
  <style>canvas { width: 100% }</style>
  <script>start(c);</script>
</body>
</html>`,
	}

	unit := sim.Unit()
	assert.Equal(t, "pendulum", unit.ID)
	assert.Equal(t, "Pendulum", unit.Title)
	assert.Equal(t, "body { margin: 0 }\ncanvas { width: 100% }", unit.Style)
	assert.Equal(t, "var c = document.getElementById('c');\n;\nstart(c);", unit.Script)

	assert.Contains(t, unit.Markup, `<canvas id="c"></canvas>`)
	assert.Contains(t, unit.Markup, `href="https://cdn.example.com/base.css"`)
	assert.Contains(t, unit.Markup, `<script src="https://cdn.example.com/lib.js"></script>`)
	assert.NotContains(t, unit.Markup, "<style>")
	assert.NotContains(t, unit.Markup, "start(c)")
	assert.NotContains(t, unit.Markup, "<title>")
}

func TestSimulationUnitFromFragment(t *testing.T) {
	sim := Simulation{ID: "s", Code: `<button id="go">Go</button><script>document.getElementById('go').textContent = 'Run';</script>`}

	unit := sim.Unit()
	assert.Equal(t, `<button id="go">Go</button>`, unit.Markup)
	assert.Equal(t, "document.getElementById('go').textContent = 'Run';", unit.Script)
	assert.Empty(t, unit.Style)
}

func TestSimulationUnitEmpty(t *testing.T) {
	sim := Simulation{ID: "blank", Title: "Blank", Code: "   "}

	require.True(t, sim.IsEmpty())
	unit := sim.Unit()
	assert.True(t, unit.IsEmpty())
	assert.Equal(t, "blank", unit.ID)

	// An empty unit still composes
	doc := sandbox.Compose(unit)
	assert.Contains(t, doc.HTML(), "<body>")
}

func TestSimulationUnitKeepsTemplates(t *testing.T) {
	sim := Simulation{Code: `<script type="text/template" id="row"><li></li></script><p>x</p>`}

	unit := sim.Unit()
	assert.Contains(t, unit.Markup, `<script type="text/template" id="row">`)
	assert.Empty(t, unit.Script)
}
