package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Reload replaces the dataset from the configured source
// POST /v1/dataset/reload
func (h *Handler) Reload(c *fiber.Ctx) error {
	resp, err := h.service.Reload(c.UserContext())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// DatasetInfo reports the size and date span of the loaded dataset
// GET /v1/dataset
func (h *Handler) DatasetInfo(c *fiber.Ctx) error {
	info := fiber.Map{
		"records":   h.store.Len(),
		"loaded_at": nil,
		"range":     nil,
	}
	if t := h.store.LoadedAt(); !t.IsZero() {
		info["loaded_at"] = t.UTC().Format(time.RFC3339)
	}
	if r, ok := h.store.DateRange(); ok {
		info["range"] = r
	}
	return c.JSON(info)
}
