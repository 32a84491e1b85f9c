package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lamchahon-maker/web-dashboard/internal/models"
)

// parseForecastQuery reads a forecast request from the query string
func parseForecastQuery(c *fiber.Ctx) models.ForecastRequest {
	return models.ForecastRequest{
		Filter:    parseFilter(c),
		Variables: splitAndTrim(c.Query("variables")),
		Horizon:   c.QueryInt("horizon", 0),
		Window:    c.QueryInt("window", 0),
		Cadence:   c.Query("cadence"),
	}
}

// Forecast handles GET forecast requests
// GET /v1/forecast?horizon=7&window=7&cadence=daily&variables=iron,silica
func (h *Handler) Forecast(c *fiber.Ctx) error {
	return h.executeForecast(c, parseForecastQuery(c))
}

// ForecastPost handles POST forecast requests
// POST /v1/forecast
func (h *Handler) ForecastPost(c *fiber.Ctx) error {
	var body models.ForecastRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidJSON(c, err)
	}
	return h.executeForecast(c, body)
}

func (h *Handler) executeForecast(c *fiber.Ctx, req models.ForecastRequest) error {
	result, err := h.service.Forecast(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(models.NewForecastResponse(result))
}
