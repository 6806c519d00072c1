package lyrics

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Handler handles lyrics requests
type Handler struct {
	service *Service
	guard   *PathGuard
}

// NewHandler creates a new lyrics handler
func NewHandler(service *Service, guard *PathGuard) *Handler {
	return &Handler{
		service: service,
		guard:   guard,
	}
}

// FileRequest asks for the lyrics of an audio file, derived from its own tags.
type FileRequest struct {
	AudioPath string `json:"audioPath"`
	Force     bool   `json:"force"`
}

// FetchLyrics resolves the lyrics of a track into the requested output file.
func (h *Handler) FetchLyrics(c *fiber.Ctx) error {
	slog.Debug("FetchLyrics handler called")

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return h.fail(c, err)
	}

	path, err := h.guard.Resolve(req.OutputPath)
	if err != nil {
		return h.fail(c, err)
	}
	req.OutputPath = path

	resp, err := h.service.FetchLyrics(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// FetchLyricsForFile resolves the lyrics of an audio file into its .lyrics directory.
func (h *Handler) FetchLyricsForFile(c *fiber.Ctx) error {
	slog.Debug("FetchLyricsForFile handler called")

	var req FileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.AudioPath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "audioPath is required",
		})
	}

	path, err := h.guard.Resolve(req.AudioPath)
	if err != nil {
		return h.fail(c, err)
	}

	resp, err := h.service.FetchLyricsForFile(c.UserContext(), path, req.Force)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(resp)
}

// GetLyrics returns the stored lyrics at the path query parameter.
func (h *Handler) GetLyrics(c *fiber.Ctx) error {
	slog.Debug("GetLyrics handler called", "path", c.Query("path"))

	if c.Query("path") == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "path is required",
		})
	}
	path, err := h.guard.Resolve(c.Query("path"))
	if err != nil {
		return h.fail(c, err)
	}

	text, ok, err := h.service.ReadLyrics(path)
	if err != nil {
		slog.Error("Error reading lyrics", "path", path, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error reading lyrics",
		})
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lyrics not found",
		})
	}
	return c.JSON(fiber.Map{
		"path":   path,
		"synced": HasTimestamps(text),
		"lyrics": text,
	})
}

// GetHistory lists the latest lyrics responses.
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	slog.Debug("GetHistory handler called")

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a positive integer",
			})
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := h.service.History(c.UserContext(), limit)
	if err != nil {
		slog.Error("Error loading lyrics history", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error loading lyrics history",
		})
	}
	return c.JSON(fiber.Map{
		"entries": entries,
	})
}

// fail maps service errors to status codes.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrPathNotAllowed):
		slog.Error("Path not in allowed roots", "error", err)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Invalid output path"})
	default:
		slog.Error("Lyrics request failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
