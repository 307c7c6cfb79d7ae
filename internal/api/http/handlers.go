package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Coursebook/backend/internal/content"
	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox"
	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox/frames"
	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox/headless"
)

// SlotSimulation is the display slot of the simulations page
const SlotSimulation = "simulation"

// Handlers contains all HTTP handlers
type Handlers struct {
	source   content.Source
	frames   *frames.Store
	metrics  *monitoring.Metrics
	observer sandbox.Observer
	logger   *zap.Logger
	sandbox  headless.Config
	pages    *pages
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(
	source content.Source,
	store *frames.Store,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
	sandboxConfig headless.Config,
) (*Handlers, error) {
	p, err := loadPages()
	if err != nil {
		return nil, err
	}

	observers := sandbox.Observers{sandbox.LogObserver{Logger: logger}}
	if metrics != nil {
		observers = append(observers, metrics)
	}

	return &Handlers{
		source:   source,
		frames:   store,
		metrics:  metrics,
		observer: observers,
		logger:   logger,
		sandbox:  sandboxConfig,
		pages:    p,
	}, nil
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":      "healthy",
		"service":     "coursebook",
		"frames_live": h.frames.Live(),
	}
	if h.metrics != nil {
		resp["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, resp)
}
