package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Coursebook/backend/internal/catalog"
	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox"
	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox/headless"
)

// ListCourses returns the courses matching the optional q filter
func (h *Handlers) ListCourses(c *gin.Context) {
	courses, err := h.source.ListCourses(c.Request.Context())
	if err != nil {
		h.jsonError(c, err)
		return
	}
	courses = catalog.FilterCourses(courses, c.Query("q"))

	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
		"count":   len(courses),
	})
}

// GetCourse returns one course with its modules and lessons
func (h *Handlers) GetCourse(c *gin.Context) {
	course, err := h.source.GetCourse(c.Request.Context(), catalog.ID(c.Param("id")))
	if err != nil {
		h.jsonError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// ListSimulations returns the simulations matching the optional q filter
func (h *Handlers) ListSimulations(c *gin.Context) {
	sims, err := h.source.ListSimulations(c.Request.Context())
	if err != nil {
		h.jsonError(c, err)
		return
	}
	sims = catalog.FilterSimulations(sims, c.Query("q"))

	c.JSON(http.StatusOK, gin.H{
		"simulations": sims,
		"count":       len(sims),
	})
}

// SimulationDocument returns the composed document of a simulation as text
func (h *Handlers) SimulationDocument(c *gin.Context) {
	sim, err := h.source.GetSimulation(c.Request.Context(), catalog.ID(c.Param("id")))
	if err != nil {
		h.jsonError(c, err)
		return
	}

	doc := h.compose(sim)
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", doc.Bytes())
}

// PreflightSimulation runs a simulation headlessly and reports what it did.
// Failures of the simulation's own code are part of the report, not errors.
func (h *Handlers) PreflightSimulation(c *gin.Context) {
	ctx := c.Request.Context()
	sim, err := h.source.GetSimulation(ctx, catalog.ID(c.Param("id")))
	if err != nil {
		h.jsonError(c, err)
		return
	}

	start := time.Now()
	render, err := headless.Preflight(ctx, sim.Unit(), h.sandbox, sandbox.WithObserver(h.observer))
	if err != nil {
		h.jsonError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.IncComposes()
		h.metrics.RecordPreflight(time.Since(start), render.ContentFailed())
	}
	if render.ContentFailed() {
		h.logger.Info("Simulation content failed in preflight",
			zap.String("simulation", sim.ID.String()),
			zap.Strings("notices", render.Notices),
			zap.Strings("errors", render.Errors),
			zap.Bool("interrupted", render.Interrupted),
		)
	}

	c.JSON(http.StatusOK, gin.H{
		"simulation":     sim.ID,
		"content_failed": render.ContentFailed(),
		"render":         render,
	})
}

// compose builds the document for sim and counts it
func (h *Handlers) compose(sim catalog.Simulation) sandbox.Document {
	if h.metrics != nil {
		h.metrics.IncComposes()
	}
	return sandbox.Compose(sim.Unit())
}
