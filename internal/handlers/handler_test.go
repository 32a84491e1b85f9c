package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/config"
	"github.com/lamchahon-maker/web-dashboard/internal/dataset"
	"github.com/lamchahon-maker/web-dashboard/internal/logging"
	"github.com/lamchahon-maker/web-dashboard/internal/models"
	"github.com/lamchahon-maker/web-dashboard/internal/services"
)

func newTestHandler(ds analytics.Dataset) *Handler {
	store := dataset.NewStore()
	if ds != nil {
		store.Replace(ds)
	}
	logger := logging.NewNop()
	svc := services.NewDashboardService(logger, store, nil, nil, config.DefaultConfig().Analytics)
	return New(logger, store, svc)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"iron", "silica"}, splitAndTrim(" iron, ,silica,"))
	assert.Empty(t, splitAndTrim(""))
}

func TestStatusFor(t *testing.T) {
	tests := map[string]int{
		services.CodeInvalidRequest:    fiber.StatusBadRequest,
		services.CodeInvalidFilter:     fiber.StatusBadRequest,
		services.CodeNoData:            fiber.StatusUnprocessableEntity,
		services.CodeCancelled:         fiber.StatusRequestTimeout,
		services.CodeSourceUnavailable: fiber.StatusServiceUnavailable,
		services.CodeReloadFailed:      fiber.StatusBadGateway,
		services.CodeInternal:          fiber.StatusInternalServerError,
	}
	for code, status := range tests {
		assert.Equal(t, status, statusFor(code), code)
	}
}

func TestHealth_Empty(t *testing.T) {
	h := newTestHandler(nil)
	app := fiber.New()
	app.Get("/health", h.Health)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health models.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, Version, health.Version)
	assert.Zero(t, health.Records)
}

func TestKPIs_EmptyStore(t *testing.T) {
	h := newTestHandler(nil)
	app := fiber.New()
	app.Get("/kpis", h.KPIs)

	resp, err := app.Test(httptest.NewRequest("GET", "/kpis", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 0.0, result["total"])
	assert.Nil(t, result["date_range"])
}

func TestForecastPost_InvalidJSON(t *testing.T) {
	h := newTestHandler(analytics.Dataset{analytics.NewRecord("2020-01-01").With(analytics.IronConcentrate, 65)})
	app := fiber.New()
	app.Post("/forecast", h.ForecastPost)

	req := httptest.NewRequest("POST", "/forecast", strings.NewReader(`{"horizon":"soon"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "INVALID_JSON", errResp.Error.Code)
}

func TestForecast_HorizonAboveMaximum(t *testing.T) {
	h := newTestHandler(analytics.Dataset{analytics.NewRecord("2020-01-01").With(analytics.IronConcentrate, 65).With(analytics.SilicaConcentrate, 2)})
	app := fiber.New()
	app.Get("/forecast", h.Forecast)

	resp, err := app.Test(httptest.NewRequest("GET", "/forecast?horizon=1000", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, services.CodeInvalidRequest, errResp.Error.Code)
	assert.Equal(t, "/forecast", errResp.Error.Path)
	assert.EqualValues(t, 365, errResp.Error.Details["max_horizon"])
}

func TestForecast_SingleDay(t *testing.T) {
	h := newTestHandler(analytics.Dataset{analytics.NewRecord("2020-01-01").With(analytics.IronConcentrate, 65).With(analytics.SilicaConcentrate, 2)})
	app := fiber.New()
	app.Get("/forecast", h.Forecast)

	resp, err := app.Test(httptest.NewRequest("GET", "/forecast?horizon=2", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result models.ForecastResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"2020-01-02", "2020-01-03"}, result.FutureDates)

	// One point cannot define a trend line
	require.Len(t, result.IronForecast, 2)
	assert.False(t, result.IronForecast[0].Valid)
	assert.False(t, result.IronSlope.Valid)
}

func TestDatasetInfo_Empty(t *testing.T) {
	h := newTestHandler(nil)
	app := fiber.New()
	app.Get("/dataset", h.DatasetInfo)

	resp, err := app.Test(httptest.NewRequest("GET", "/dataset", nil))
	require.NoError(t, err)

	var info map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, 0.0, info["records"])
	assert.Nil(t, info["range"])
}
