package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lamchahon-maker/web-dashboard/internal/dataset"
	"github.com/lamchahon-maker/web-dashboard/internal/logging"
	"github.com/lamchahon-maker/web-dashboard/internal/models"
	"github.com/lamchahon-maker/web-dashboard/internal/services"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger  *logging.Logger
	store   *dataset.Store
	service *services.DashboardService
}

// New creates a new handler instance
func New(logger *logging.Logger, store *dataset.Store, service *services.DashboardService) *Handler {
	return &Handler{
		logger:  logger,
		store:   store,
		service: service,
	}
}

// parseFilter reads the common view parameters from the query string
func parseFilter(c *fiber.Ctx) dataset.Filter {
	return dataset.Filter{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Search: c.Query("search"),
		Expr:   c.Query("where"),
	}
}

// parsePageSize reads page_size, mapping "all" to models.PageSizeAll
func parsePageSize(c *fiber.Ctx) int {
	if strings.EqualFold(strings.TrimSpace(c.Query("page_size")), "all") {
		return models.PageSizeAll
	}
	return c.QueryInt("page_size", 0)
}

// splitAndTrim splits a comma separated list, dropping empty parts
func splitAndTrim(s string) []string {
	parts := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// statusFor maps a service error code to an HTTP status
func statusFor(code string) int {
	switch code {
	case services.CodeInvalidRequest, services.CodeInvalidFilter:
		return fiber.StatusBadRequest
	case services.CodeNoData:
		return fiber.StatusUnprocessableEntity
	case services.CodeCancelled:
		return fiber.StatusRequestTimeout
	case services.CodeSourceUnavailable:
		return fiber.StatusServiceUnavailable
	case services.CodeReloadFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError renders err as models.ErrorResponse
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		svcErr = services.NewServiceError(services.CodeInternal, err.Error())
	}

	status := statusFor(svcErr.Code)
	if status >= fiber.StatusInternalServerError {
		h.logger.WithContext(c.UserContext()).Error("Request failed",
			"path", c.Path(), "code", svcErr.Code, "error", svcErr.Message)
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Path:    c.Path(),
			Details: svcErr.Details,
		},
	})
}

// invalidJSON rejects an unparsable request body
func invalidJSON(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_JSON",
			Message: "Failed to parse JSON body",
			Details: map[string]interface{}{"error": err.Error()},
		},
	})
}
