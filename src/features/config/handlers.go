package config

import (
	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the config feature.
type Handler struct {
	configManager *Manager
}

// NewHandler creates a new handler for the config feature.
func NewHandler(configManager *Manager) *Handler {
	return &Handler{
		configManager: configManager,
	}
}

// GetConfig returns the running configuration, as YAML when ?format=yaml.
func (h *Handler) GetConfig(c *fiber.Ctx) error {
	if c.Query("format") == "yaml" {
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.SendString(h.configManager.GetYAML())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(h.configManager.GetJSON())
}

// GetProviders returns which lyrics providers are enabled.
func (h *Handler) GetProviders(c *fiber.Ctx) error {
	return c.JSON(h.configManager.GetEnabledLyricsProviders())
}
