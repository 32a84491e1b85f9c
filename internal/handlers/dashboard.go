package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lamchahon-maker/web-dashboard/internal/models"
)

// Records handles the data table
// GET /v1/records?from=&to=&search=&where=&sort=&order=&page=&page_size=
// page_size=all (or -1) returns every matching row
func (h *Handler) Records(c *fiber.Ctx) error {
	req := models.RecordsRequest{
		Filter:   parseFilter(c),
		Sort:     c.Query("sort"),
		Order:    c.Query("order"),
		Page:     c.QueryInt("page", 1),
		PageSize: parsePageSize(c),
	}

	page, err := h.service.Records(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(page)
}

// KPIs handles the KPI cards
// GET /v1/kpis
func (h *Handler) KPIs(c *fiber.Ctx) error {
	result, err := h.service.KPIs(c.UserContext(), parseFilter(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// Stats handles descriptive statistics
// GET /v1/stats?variables=iron,silica
func (h *Handler) Stats(c *fiber.Ctx) error {
	result, err := h.service.Stats(c.UserContext(), parseFilter(c), splitAndTrim(c.Query("variables")))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// Histogram handles a distribution chart
// GET /v1/histogram?variable=iron&bins=20
func (h *Handler) Histogram(c *fiber.Ctx) error {
	req := models.HistogramRequest{
		Filter:   parseFilter(c),
		Variable: c.Query("variable"),
		Bins:     c.QueryInt("bins", 0),
	}

	result, err := h.service.Histogram(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// Correlation handles the correlation matrix
// GET /v1/correlation?variables=&mode=independent|pairwise
func (h *Handler) Correlation(c *fiber.Ctx) error {
	req := models.CorrelationRequest{
		Filter:    parseFilter(c),
		Variables: splitAndTrim(c.Query("variables")),
		Mode:      c.Query("mode"),
	}

	result, err := h.service.Correlation(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// Scatter handles a scatter chart
// GET /v1/scatter?x=ph&y=silica
func (h *Handler) Scatter(c *fiber.Ctx) error {
	req := models.ScatterRequest{
		Filter: parseFilter(c),
		X:      c.Query("x", "ph"),
		Y:      c.Query("y", "silica"),
	}

	result, err := h.service.Scatter(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}

// Overview handles the combined dashboard panels
// GET /v1/overview
func (h *Handler) Overview(c *fiber.Ctx) error {
	result, err := h.service.Overview(c.UserContext(), parseFilter(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(result)
}
