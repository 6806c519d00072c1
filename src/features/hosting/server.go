package hosting

import (
	"fmt"
	"log/slog"

	"github.com/contre95/lyricsolid/src/features/config"
	"github.com/contre95/lyricsolid/src/features/lyrics"
	"github.com/contre95/lyricsolid/src/features/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, lyricsHandler *lyrics.Handler, metricsHandler *metrics.Handler, gatherer prometheus.Gatherer) *Server {
	bodyLimit := cfg.Get().Server.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = config.DefaultBodyLimit
	}
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
		AppName:               "Lyricsolid",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
		BodyLimit:             bodyLimit,
	})

	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	config.RegisterRoutes(app, cfg)
	lyrics.RegisterRoutes(app, lyricsHandler)
	metrics.RegisterRoutes(app, metricsHandler, gatherer)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// App exposes the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
