package router

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/config"
	"github.com/lamchahon-maker/web-dashboard/internal/dataset"
	"github.com/lamchahon-maker/web-dashboard/internal/export"
	"github.com/lamchahon-maker/web-dashboard/internal/handlers"
	"github.com/lamchahon-maker/web-dashboard/internal/logging"
	"github.com/lamchahon-maker/web-dashboard/internal/metrics"
	"github.com/lamchahon-maker/web-dashboard/internal/models"
	"github.com/lamchahon-maker/web-dashboard/internal/services"
)

const testAPIKey = "abcdefghijklmnopqrstuvwxyz0123456789"

func records() analytics.Dataset {
	return analytics.Dataset{
		analytics.NewRecord("2017-03-10").With(analytics.IronConcentrate, 64).With(analytics.SilicaConcentrate, 3).With(analytics.PulpPH, 9.5),
		analytics.NewRecord("2017-03-10").With(analytics.IronConcentrate, 66).With(analytics.SilicaConcentrate, 2).With(analytics.PulpPH, 9.7),
		analytics.NewRecord("2017-03-11").With(analytics.IronConcentrate, 66).With(analytics.SilicaConcentrate, 2).With(analytics.PulpPH, 10),
		analytics.NewRecord("2017-03-12").With(analytics.IronConcentrate, 67).With(analytics.SilicaConcentrate, 1.5),
		analytics.NewRecord("2017-03-13").With(analytics.IronConcentrate, 68).With(analytics.SilicaConcentrate, 1),
	}
}

func newApp(t *testing.T, auth bool) *fiber.App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Auth = config.AuthConfig{Enabled: auth, APIKeys: []string{testAPIKey}}

	store := dataset.NewStore()
	store.Replace(records())

	logger := logging.NewNop()
	m := metrics.New(true)
	svc := services.NewDashboardService(logger, store, nil, m, cfg.Analytics)
	return New(logger, handlers.New(logger, store, svc), m, *cfg)
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeError(t *testing.T, body []byte) models.ErrorDetail {
	t.Helper()
	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp), string(body))
	return errResp.Error
}

func TestHealth(t *testing.T) {
	resp, body := get(t, newApp(t, true), "/health")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 5, health.Records)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestAuthRequiredOnV1(t *testing.T) {
	app := newApp(t, true)

	resp, _ := get(t, app, "/v1/kpis")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/v1/kpis", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestNotFound(t *testing.T) {
	resp, body := get(t, newApp(t, false), "/nope")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, body).Code)
}

func TestRecords(t *testing.T) {
	resp, body := get(t, newApp(t, false), "/v1/records?sort=iron&order=desc&page=1&page_size=2&from=2017-03-11")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var page struct {
		Records    []map[string]interface{} `json:"records"`
		Total      int                      `json:"total"`
		TotalPages int                      `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Records, 2)
	assert.Equal(t, 68.0, page.Records[0]["% Iron Concentrate"])
	assert.Nil(t, page.Records[0]["Ore Pulp pH"])
}

func TestRecords_PageSizeAll(t *testing.T) {
	app := newApp(t, false)

	for _, size := range []string{"all", "ALL", "-1"} {
		resp, body := get(t, app, "/v1/records?page_size="+size)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

		var page dataset.Page
		require.NoError(t, json.Unmarshal(body, &page))
		assert.Equal(t, 5, page.Total, size)
		assert.Equal(t, 1, page.TotalPages, size)
		assert.Equal(t, 5, page.PageSize, size)
		assert.Len(t, page.Records, 5, size)
	}

	resp, body := get(t, app, "/v1/records?page_size=-2")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, services.CodeInvalidRequest, decodeError(t, body).Code)
}

func TestRecords_BadFilter(t *testing.T) {
	app := newApp(t, false)

	resp, body := get(t, app, "/v1/records?where="+strings.ReplaceAll("iron >", " ", "%20"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, services.CodeInvalidFilter, decodeError(t, body).Code)

	resp, body = get(t, app, "/v1/records?order=sideways")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, services.CodeInvalidRequest, decodeError(t, body).Code)
}

func TestStats(t *testing.T) {
	resp, body := get(t, newApp(t, false), "/v1/stats?variables=iron,ph")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var result struct {
		Variables map[string]map[string]interface{} `json:"variables"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	require.Contains(t, result.Variables, "iron")
	assert.InDelta(t, 66.2, result.Variables["iron"]["mean"], 1e-9)
	assert.InDelta(t, 66.0, result.Variables["iron"]["percentile_50"], 1e-9)

	// Three pH values; excess kurtosis needs four
	assert.Nil(t, result.Variables["ph"]["kurtosis"])
}

func TestHistogram(t *testing.T) {
	resp, body := get(t, newApp(t, false), "/v1/histogram?variable=silica&bins=4")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var result struct {
		Count int `json:"count"`
		Bins  []struct {
			Count int `json:"count"`
		} `json:"bins"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, 5, result.Count)
	assert.Len(t, result.Bins, 4)

	resp, _ = get(t, newApp(t, false), "/v1/histogram")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCorrelation(t *testing.T) {
	resp, body := get(t, newApp(t, false), "/v1/correlation?variables=iron,silica&mode=pairwise")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var result struct {
		Variables []string    `json:"variables"`
		Matrix    [][]float64 `json:"matrix"`
		Mode      string      `json:"mode"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, []string{"% Iron Concentrate", "% Silica Concentrate"}, result.Variables)
	assert.Equal(t, "pairwise", result.Mode)
	assert.InDelta(t, 1.0, result.Matrix[0][0], 1e-9)
	assert.Less(t, result.Matrix[0][1], -0.9)
}

func TestScatter_DefaultAxes(t *testing.T) {
	resp, body := get(t, newApp(t, false), "/v1/scatter")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var result struct {
		X      string `json:"x"`
		Points []struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"points"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "Ore Pulp pH", result.X)
	assert.Len(t, result.Points, 3)
}

func TestForecast_Get(t *testing.T) {
	resp, body := get(t, newApp(t, false), "/v1/forecast?horizon=2")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var result models.ForecastResponse
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, []string{"2017-03-10", "2017-03-11", "2017-03-12", "2017-03-13"}, result.HistoricalDates)
	assert.Equal(t, []string{"2017-03-14", "2017-03-15"}, result.FutureDates)

	// Daily means: 65, 66, 67, 68
	require.Len(t, result.HistoricalIron, 4)
	assert.InDelta(t, 65.0, result.HistoricalIron[0].Float, 1e-9)
	assert.InDelta(t, 69.0, result.IronForecast[0].Float, 1e-9)
	assert.InDelta(t, 1.0, result.IronSlope.Float, 1e-9)
	assert.InDelta(t, 1.0, result.IronR2.Float, 1e-9)

	// Window 7 exceeds four days: no smoothed value is defined
	for _, v := range result.IronMA {
		assert.False(t, v.Valid)
	}
}

func TestForecast_Post(t *testing.T) {
	app := newApp(t, false)

	req := httptest.NewRequest("POST", "/v1/forecast", strings.NewReader(`{"horizon":3,"window":2,"variables":["silica"],"to":"2017-03-12"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var result models.ForecastResponse
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Len(t, result.SilicaForecast, 3)
	assert.Empty(t, result.IronForecast)
	assert.False(t, result.IronR2.Valid)
	require.Len(t, result.SilicaMA, 3)
	assert.False(t, result.SilicaMA[0].Valid)
	assert.True(t, result.SilicaMA[1].Valid)

	req = httptest.NewRequest("POST", "/v1/forecast", strings.NewReader(`{"horizon":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestForecast_NoData(t *testing.T) {
	resp, body := get(t, newApp(t, false), "/v1/forecast?from=2030-01-01")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, services.CodeNoData, decodeError(t, body).Code)
}

func TestOverview(t *testing.T) {
	resp, body := get(t, newApp(t, false), "/v1/overview")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var result map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &result))
	for _, key := range []string{"kpis", "stats", "correlation", "forecast"} {
		assert.Contains(t, result, key)
	}
	assert.NotEqual(t, "null", string(result["forecast"]))
}

func TestExport(t *testing.T) {
	app := newApp(t, false)

	resp, body := get(t, app, "/v1/export?format=csv&variables=iron&to=2017-03-10")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "mining_data.csv")

	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"date", "% Iron Concentrate"}, {"2017-03-10", "64"}, {"2017-03-10", "66"}}, rows)

	resp, body = get(t, app, "/v1/export?format=json&compress=true")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "mining_data.json.sz")
	plain, err := io.ReadAll(export.Decompress(bytes.NewReader(body)))
	require.NoError(t, err)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(plain, &decoded))
	assert.Len(t, decoded, 5)

	resp, _ = get(t, app, "/v1/export?format=pdf")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestExportForecast(t *testing.T) {
	resp, body := get(t, newApp(t, false), "/v1/export/forecast?horizon=1")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "forecast_data.csv")

	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "Iron Forecast (%)", "Silica Forecast (%)"},
		{"2017-03-14", "69.00", "0.50"},
	}, rows)
}

func TestReload_WithoutSource(t *testing.T) {
	app := newApp(t, false)

	resp, err := app.Test(httptest.NewRequest("POST", "/v1/dataset/reload", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestDatasetInfo(t *testing.T) {
	resp, body := get(t, newApp(t, false), "/v1/dataset")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var info struct {
		Records int               `json:"records"`
		Range   dataset.DateRange `json:"range"`
	}
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, 5, info.Records)
	assert.Equal(t, "2017-03-13", info.Range.To)
	assert.Equal(t, 4, info.Range.Days)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newApp(t, false)
	get(t, app, "/v1/kpis")

	resp, body := get(t, app, "/metrics")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `dashboard_http_requests_total{method="GET",path="/v1/kpis",status="200"} 1`)
	assert.Contains(t, string(body), `dashboard_engine_duration_seconds_count{engine="kpi"} 1`)
}
