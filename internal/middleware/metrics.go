package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lamchahon-maker/web-dashboard/internal/metrics"
)

// Metrics counts every request by method, matched route pattern and status.
// Using the pattern instead of the raw path keeps label cardinality bounded.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		m.ObserveRequest(c.Method(), c.Route().Path, status)
		return err
	}
}
