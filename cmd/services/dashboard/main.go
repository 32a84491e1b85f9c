package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lamchahon-maker/web-dashboard/internal/config"
	"github.com/lamchahon-maker/web-dashboard/internal/dataset"
	"github.com/lamchahon-maker/web-dashboard/internal/grpc"
	"github.com/lamchahon-maker/web-dashboard/internal/handlers"
	"github.com/lamchahon-maker/web-dashboard/internal/ingest"
	"github.com/lamchahon-maker/web-dashboard/internal/logging"
	"github.com/lamchahon-maker/web-dashboard/internal/metrics"
	"github.com/lamchahon-maker/web-dashboard/internal/router"
	"github.com/lamchahon-maker/web-dashboard/internal/services"
	"github.com/lamchahon-maker/web-dashboard/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	envFile := flag.String("env", ".env", "Optional dotenv file loaded before the configuration")
	flag.Parse()

	// A missing dotenv file is not an error
	_ = godotenv.Load(*envFile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Dashboard service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	m := metrics.New(false)
	store := dataset.NewStore()

	var health *grpc.HealthServer
	if cfg.GRPCEnabled() {
		health = grpc.NewHealthServer(cfg.GetGRPCAddress(), logger)
	}
	store.OnChange(func(total int) {
		m.SetDatasetSize(total)
		if health != nil {
			health.Update(total)
		}
	})

	source, err := dataset.NewSource(cfg.Dataset)
	if err != nil {
		logger.Fatal("Failed to create dataset source", "error", err)
	}
	defer func() { _ = source.Close() }()

	loadCtx, loadCancel := context.WithTimeout(context.Background(), cfg.Dataset.Timeout)
	n, err := dataset.Reload(loadCtx, source, store)
	loadCancel()
	if err != nil {
		// The API stays up so a later reload can recover
		logger.Error("Initial dataset load failed", "source", source.Name(), "error", err)
	} else {
		logger.Info("Dataset loaded", "source", source.Name(), "records", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Ingest.Enabled {
		logger.Info("Connecting to Queue", "type", cfg.Ingest.QueueType(), "url", cfg.Ingest.URL)
		sub, err := ingest.NewSubscriber(cfg.Ingest)
		if err != nil {
			logger.Fatal("Failed to connect to Queue", "error", err)
		}
		defer func() { _ = sub.Close() }()

		handler := ingest.RecordHandler(store, m, string(cfg.Ingest.QueueType()))
		if err := sub.Subscribe(ctx, cfg.Ingest.Subject, handler); err != nil {
			logger.Fatal("Failed to subscribe", "subject", cfg.Ingest.Subject, "error", err)
		}
		logger.Info("Ingesting live records", "subject", cfg.Ingest.Subject)
	}

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	svc := services.NewDashboardService(logger, store, source, m, cfg.Analytics)
	app := router.New(logger, handlers.New(logger, store, svc), m, *cfg)

	if health != nil {
		health.Update(store.Len())
		go func() {
			if err := health.Start(ctx); err != nil {
				logger.Error("gRPC health server failed", "error", err)
			}
		}()
	}

	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
