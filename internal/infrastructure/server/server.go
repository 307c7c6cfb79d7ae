package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/GriffinCanCode/Coursebook/backend/internal/api/http"
	"github.com/GriffinCanCode/Coursebook/backend/internal/api/middleware"
	"github.com/GriffinCanCode/Coursebook/backend/internal/content"
	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox"
	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox/frames"
	"github.com/GriffinCanCode/Coursebook/backend/internal/sandbox/headless"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	handler  http.Handler
	frames   *frames.Store
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	registry *prometheus.Registry
}

// NewServer creates a server whose content source is chosen by cfg
func NewServer(cfg *config.Config) (*Server, error) {
	logger := logging.NewFor(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing Coursebook server",
		zap.String("port", cfg.Server.Port),
		zap.String("content_backend", cfg.Content.Backend),
	)

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)
	tracer := tracing.New("coursebook", logger.Component("trace").Logger, 0)

	source, err := NewSource(cfg.Content, metrics, tracer, logger)
	if err != nil {
		tracer.Close()
		return nil, err
	}
	return newServer(cfg, source, logger, metrics, registry, tracer)
}

// New creates a server around an existing content source
func New(cfg *config.Config, source content.Source, logger *logging.Logger) (*Server, error) {
	registry := prometheus.NewRegistry()
	tracer := tracing.New("coursebook", logger.Component("trace").Logger, 0)
	return newServer(cfg, source, logger, monitoring.NewMetrics(registry), registry, tracer)
}

// NewSource builds the configured content source
func NewSource(cfg config.ContentConfig, metrics *monitoring.Metrics, tracer *tracing.Tracer, logger *logging.Logger) (content.Source, error) {
	switch cfg.Backend {
	case config.BackendFile:
		src, err := content.NewFile(cfg.Fixtures)
		if err != nil {
			return nil, fmt.Errorf("failed to load fixtures: %w", err)
		}
		logger.Info("Serving content from fixtures", zap.String("dir", cfg.Fixtures))
		return src, nil
	case config.BackendDirectus:
		logger.Info("Serving content from Directus",
			zap.String("url", cfg.URL),
			zap.Bool("token", cfg.Token != ""),
		)
		return content.NewDirectus(content.DirectusConfig{
			URL:     cfg.URL,
			Token:   cfg.Token,
			Timeout: cfg.Timeout,
			RPS:     cfg.RPS,
		}, content.WithMetrics(metrics), content.WithLogger(logger.Component("content").Logger)), nil
	default:
		return nil, fmt.Errorf("unknown content backend %q", cfg.Backend)
	}
}

func newServer(
	cfg *config.Config,
	source content.Source,
	logger *logging.Logger,
	metrics *monitoring.Metrics,
	registry *prometheus.Registry,
	tracer *tracing.Tracer,
) (*Server, error) {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sandboxLog := logger.Component("sandbox").Logger
	store := frames.NewStore(
		frames.Config{
			MaxFrames: cfg.Sandbox.MaxFrames,
			TTL:       cfg.Sandbox.FrameTTL,
		},
		frames.WithObserver(sandbox.Observers{metrics, sandbox.LogObserver{Logger: sandboxLog}}),
		frames.WithLiveGauge(metrics.SetFramesLive),
	)

	headlessCfg := headless.DefaultConfig()
	headlessCfg.Timeout = cfg.Sandbox.Timeout

	handlers, err := httpapi.NewHandlers(source, store, metrics, logger.Component("http").Logger, headlessCfg)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to create handlers: %w", err)
	}

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.Middleware(tracer))
	router.Use(middleware.Logger(logger.Component("access").Logger))
	router.Use(monitoring.Middleware(metrics))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Pages
	router.GET("/", handlers.Index)
	router.GET("/courses", handlers.CoursesPage)
	router.GET("/live-preview", handlers.LivePreviewPage)
	router.GET("/simulations", handlers.SimulationsPage)

	// Isolation frames
	router.GET("/frames/:token", handlers.Frame)
	router.POST("/frames/release", handlers.ReleaseFrame)

	// JSON API
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.CORS.Origins
	api := router.Group("/api", middleware.CORS(corsCfg))
	api.GET("/courses", handlers.ListCourses)
	api.GET("/courses/:id", handlers.GetCourse)
	api.GET("/simulations", handlers.ListSimulations)
	api.GET("/simulations/:id/document", handlers.SimulationDocument)
	api.POST("/simulations/:id/preflight", handlers.PreflightSimulation)

	// Health and metrics
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		handler:  gzhttp.GzipHandler(router),
		frames:   store,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		registry: registry,
	}, nil
}

// Handler returns the compressed root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.frames.Run(sweepCtx, sweepInterval(s.config.Sandbox.FrameTTL))

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close releases every display slot, drains pending spans and flushes the logger
func (s *Server) Close() error {
	s.frames.Close()
	s.tracer.Close()
	_ = s.logger.Sync()
	return nil
}

// sweepInterval checks for idle slots a few times per TTL
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	return interval
}
