package lyrics

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers lyrics routes
func RegisterRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	api.Post("/fetch-lyrics", handler.FetchLyrics)
	api.Post("/fetch-lyrics-for-file", handler.FetchLyricsForFile)

	api.Get("/lyrics", handler.GetLyrics)
	api.Get("/lyrics/history", handler.GetHistory)
}
