package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/lamchahon-maker/web-dashboard/internal/models"
	"github.com/lamchahon-maker/web-dashboard/internal/services"
)

// Export handles dataset downloads
// GET /v1/export?format=csv|json|xlsx&table=true&compress=true&variables=
func (h *Handler) Export(c *fiber.Ctx) error {
	req := models.ExportRequest{
		Filter:    parseFilter(c),
		Format:    c.Query("format"),
		Variables: splitAndTrim(c.Query("variables")),
		Table:     c.QueryBool("table", false),
		Compress:  c.QueryBool("compress", false),
	}

	result, err := h.service.Export(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}
	return sendExport(c, result)
}

// ExportForecast handles forecast downloads
// GET /v1/export/forecast?horizon=7&compress=true
func (h *Handler) ExportForecast(c *fiber.Ctx) error {
	result, err := h.service.ExportForecast(c.UserContext(), parseForecastQuery(c), c.QueryBool("compress", false))
	if err != nil {
		return h.respondError(c, err)
	}
	return sendExport(c, result)
}

func sendExport(c *fiber.Ctx, result *services.ExportResult) error {
	if result.Compressed {
		c.Set(fiber.HeaderContentType, "application/x-snappy-framed")
		c.Set("X-Content-Type", result.ContentType)
	} else {
		c.Set(fiber.HeaderContentType, result.ContentType)
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", result.Filename))
	return c.Send(result.Body)
}
