package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lamchahon-maker/web-dashboard/internal/config"
	"github.com/lamchahon-maker/web-dashboard/internal/handlers"
	"github.com/lamchahon-maker/web-dashboard/internal/logging"
	"github.com/lamchahon-maker/web-dashboard/internal/metrics"
	"github.com/lamchahon-maker/web-dashboard/internal/middleware"
	"github.com/lamchahon-maker/web-dashboard/internal/utils"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, h *handlers.Handler, m *metrics.Metrics, cfg config.Config) {
	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
		ExposeHeaders: "Content-Disposition,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))
	if m != nil {
		app.Use(middleware.Metrics(m))
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Auth))

	// Data table
	v1.Get("/records", h.Records)

	// Analytics
	v1.Get("/kpis", h.KPIs)
	v1.Get("/stats", h.Stats)
	v1.Get("/histogram", h.Histogram)
	v1.Get("/correlation", h.Correlation)
	v1.Get("/scatter", h.Scatter)
	v1.Get("/forecast", h.Forecast)
	v1.Post("/forecast", h.ForecastPost)
	v1.Get("/overview", h.Overview)

	// Downloads
	v1.Get("/export", h.Export)
	v1.Get("/export/forecast", h.ExportForecast)

	// Dataset management
	v1.Get("/dataset", h.DatasetInfo)
	v1.Post("/dataset/reload", h.Reload)

	// 404 handler
	app.Use(h.NotFound)
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, h *handlers.Handler, m *metrics.Metrics, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Flotation Dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           utils.DefaultRequestTimeout,
		WriteTimeout:          utils.DefaultRequestTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, h, m, cfg)

	return app
}
