package metrics

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the metrics feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new metrics handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetLyricsStats returns the request outcomes recorded in the history.
func (h *Handler) GetLyricsStats(c *fiber.Ctx) error {
	slog.Debug("GetLyricsStats handler called")

	stats, err := h.service.GetLyricsStats(c.UserContext())
	if err != nil {
		slog.Error("Error loading lyrics stats", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error loading lyrics stats",
		})
	}
	return c.JSON(stats)
}
