package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Coursebook/backend/internal/infrastructure/server"
)

func main() {
	// Parse flags (override environment)
	port := flag.String("port", "", "Server port")
	contentURL := flag.String("content-url", "", "Directus base URL")
	fixtures := flag.String("fixtures", "", "Serve content from this fixture directory instead of Directus")
	dev := flag.Bool("dev", false, "Development logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *contentURL != "" {
		cfg.Content.URL = *contentURL
		cfg.Content.Backend = config.BackendDirectus
	}
	if *fixtures != "" {
		cfg.Content.Fixtures = *fixtures
		cfg.Content.Backend = config.BackendFile
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	runErr := srv.Run(ctx)
	stop()

	if err := srv.Close(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Server error: %v", runErr)
	}
}
