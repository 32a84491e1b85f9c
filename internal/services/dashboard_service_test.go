package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/analytics/correlation"
	"github.com/lamchahon-maker/web-dashboard/internal/config"
	"github.com/lamchahon-maker/web-dashboard/internal/dataset"
	"github.com/lamchahon-maker/web-dashboard/internal/export"
	"github.com/lamchahon-maker/web-dashboard/internal/logging"
	"github.com/lamchahon-maker/web-dashboard/internal/metrics"
	"github.com/lamchahon-maker/web-dashboard/internal/models"
)

// stubSource serves fixed records or a fixed error
type stubSource struct {
	records analytics.Dataset
	err     error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Load(context.Context) (analytics.Dataset, error) {
	return s.records, s.err
}

func (s *stubSource) Close() error { return nil }

func testRecords() analytics.Dataset {
	iron := []float64{64, 65, 66, 67, 68}
	silica := []float64{3, 2.5, 2, 1.5, 1}
	ph := []float64{9.5, 9.8, 10, 10.2, 10.5}
	dates := []string{"2017-03-10", "2017-03-11", "2017-03-12", "2017-03-13", "2017-03-14"}

	ds := make(analytics.Dataset, 0, len(dates))
	for i, d := range dates {
		ds = append(ds, analytics.NewRecord(d).
			With(analytics.IronConcentrate, iron[i]).
			With(analytics.SilicaConcentrate, silica[i]).
			With(analytics.PulpPH, ph[i]))
	}
	return ds
}

func analyticsConfig() config.AnalyticsConfig {
	return config.DefaultConfig().Analytics
}

func newTestService(t *testing.T, records analytics.Dataset, source dataset.Source) *DashboardService {
	t.Helper()
	store := dataset.NewStore()
	store.Replace(records)
	return NewDashboardService(logging.NewNop(), store, source, metrics.New(true), analyticsConfig())
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr), "expected ServiceError, got %v", err)
	assert.Equal(t, code, svcErr.Code)
}

func TestRecords_SortAndPage(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	page, err := svc.Records(context.Background(), models.RecordsRequest{
		Sort:     "iron",
		Order:    "desc",
		Page:     1,
		PageSize: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "2017-03-14", page.Records[0].Date)
	assert.Equal(t, "2017-03-13", page.Records[1].Date)
}

func TestRecords_DefaultPageSizeAndFilter(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	page, err := svc.Records(context.Background(), models.RecordsRequest{
		Filter: dataset.Filter{From: "2017-03-11", To: "2017-03-13"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 50, page.PageSize)
}

func TestRecords_PageSizeAll(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	page, err := svc.Records(context.Background(), models.RecordsRequest{PageSize: models.PageSizeAll, Page: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, page.Records, 5)
}

func TestRecords_InvalidInput(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)
	ctx := context.Background()

	_, err := svc.Records(ctx, models.RecordsRequest{Order: "up"})
	requireCode(t, err, CodeInvalidRequest)

	_, err = svc.Records(ctx, models.RecordsRequest{Filter: dataset.Filter{From: "10/03/2017"}})
	requireCode(t, err, CodeInvalidRequest)

	_, err = svc.Records(ctx, models.RecordsRequest{Filter: dataset.Filter{Expr: "iron >"}})
	requireCode(t, err, CodeInvalidFilter)

	_, err = svc.Records(ctx, models.RecordsRequest{Sort: "copper"})
	requireCode(t, err, CodeInvalidFilter)
}

func TestRecords_CancelledContext(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Records(ctx, models.RecordsRequest{})
	requireCode(t, err, CodeCancelled)
}

func TestKPIs(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	result, err := svc.KPIs(context.Background(), dataset.Filter{Expr: "iron >= 65"})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	require.NotNil(t, result.DateRange)
	assert.Equal(t, "2017-03-11", result.DateRange.From)
	assert.Equal(t, 4, result.DateRange.Days)

	iron := result.KPIs["iron"]
	assert.InDelta(t, 66.5, iron.Mean.Float, 1e-9)
	assert.Equal(t, 65.0, iron.Min.Float)
	assert.Equal(t, 68.0, iron.Max.Float)
	assert.False(t, result.KPIs["amina"].Mean.Valid)
}

func TestKPIs_EmptyView(t *testing.T) {
	svc := newTestService(t, nil, nil)

	result, err := svc.KPIs(context.Background(), dataset.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.Nil(t, result.DateRange)
}

func TestStats(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	result, err := svc.Stats(context.Background(), dataset.Filter{}, []string{"iron", "Ore Pulp pH"})
	require.NoError(t, err)
	require.Len(t, result.Variables, 2)

	iron := result.Variables["iron"]
	assert.Equal(t, 5, iron.Count)
	assert.InDelta(t, 66.0, iron.Mean.Float, 1e-9)
	assert.InDelta(t, 2.0, iron.Variance.Float, 1e-9)
	assert.InDelta(t, 66.0, iron.Percentile50.Float, 1e-9)

	_, err = svc.Stats(context.Background(), dataset.Filter{}, []string{"gold"})
	requireCode(t, err, CodeInvalidRequest)
}

func TestHistogram(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	result, err := svc.Histogram(context.Background(), models.HistogramRequest{Variable: "iron", Bins: 4})
	require.NoError(t, err)
	require.Len(t, result.Bins, 4)

	total := 0
	for _, b := range result.Bins {
		total += b.Count
	}
	assert.Equal(t, 5, total)

	result, err = svc.Histogram(context.Background(), models.HistogramRequest{Variable: "amina"})
	require.NoError(t, err)
	assert.Empty(t, result.Bins)
	assert.NotNil(t, result.Bins)

	_, err = svc.Histogram(context.Background(), models.HistogramRequest{})
	requireCode(t, err, CodeInvalidRequest)
}

func TestCorrelation(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	m, err := svc.Correlation(context.Background(), models.CorrelationRequest{
		Variables: []string{"iron", "silica"},
	})
	require.NoError(t, err)
	assert.Equal(t, correlation.ModeIndependent, m.Mode)

	r, ok := m.At(analytics.IronConcentrate, analytics.SilicaConcentrate)
	require.True(t, ok)
	assert.InDelta(t, -1.0, r, 1e-9)

	m, err = svc.Correlation(context.Background(), models.CorrelationRequest{Mode: "pairwise"})
	require.NoError(t, err)
	assert.Len(t, m.Values, analytics.NumVariables)

	_, err = svc.Correlation(context.Background(), models.CorrelationRequest{Mode: "spearman"})
	requireCode(t, err, CodeInvalidRequest)
}

func TestScatter(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	result, err := svc.Scatter(context.Background(), models.ScatterRequest{X: "ph", Y: "silica"})
	require.NoError(t, err)
	assert.Len(t, result.Points, 5)
	assert.Equal(t, analytics.PulpPH, result.X)

	_, err = svc.Scatter(context.Background(), models.ScatterRequest{X: "ph", Y: "gold"})
	requireCode(t, err, CodeInvalidRequest)
}

func TestForecast(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	result, err := svc.Forecast(context.Background(), models.ForecastRequest{Horizon: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"2017-03-15", "2017-03-16", "2017-03-17"}, result.FutureDates)
	iron, ok := result.Get(analytics.IronConcentrate)
	require.True(t, ok)
	assert.InDelta(t, 1.0, iron.Slope.Float, 1e-9)
	assert.InDelta(t, 69.0, iron.Forecast[0].Float, 1e-9)
	assert.InDelta(t, 1.0, iron.R2.Float, 1e-9)
}

func TestForecast_Defaults(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	result, err := svc.Forecast(context.Background(), models.ForecastRequest{})
	require.NoError(t, err)
	assert.Equal(t, 7, result.Horizon)
	assert.Len(t, result.Series, 2)
}

func TestForecast_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := newTestService(t, nil, nil).Forecast(ctx, models.ForecastRequest{})
	requireCode(t, err, CodeNoData)

	svc := newTestService(t, testRecords(), nil)

	_, err = svc.Forecast(ctx, models.ForecastRequest{Horizon: 10000})
	requireCode(t, err, CodeInvalidRequest)

	_, err = svc.Forecast(ctx, models.ForecastRequest{Horizon: -1})
	requireCode(t, err, CodeInvalidRequest)

	_, err = svc.Forecast(ctx, models.ForecastRequest{Cadence: "weekly"})
	requireCode(t, err, CodeInvalidRequest)

	_, err = svc.Forecast(ctx, models.ForecastRequest{Variables: []string{"amina"}})
	requireCode(t, err, CodeNoData)
}

func TestOverview(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	result, err := svc.Overview(context.Background(), dataset.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 5, result.KPIs.Total)
	assert.Len(t, result.Stats.Variables, analytics.NumVariables)
	assert.Len(t, result.Correlation.Variables, analytics.NumVariables)
	require.NotNil(t, result.Forecast)
	assert.Len(t, result.Forecast.IronForecast, 7)
	assert.Len(t, result.Forecast.HistoricalIron, 5)
}

func TestOverview_EmptyViewHasNoForecast(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	result, err := svc.Overview(context.Background(), dataset.Filter{From: "2020-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.KPIs.Total)
	assert.Nil(t, result.Forecast)
}

func TestExport_CSV(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	result, err := svc.Export(context.Background(), models.ExportRequest{
		Filter:    dataset.Filter{To: "2017-03-11"},
		Variables: []string{"iron"},
	})
	require.NoError(t, err)
	assert.Equal(t, "mining_data.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)

	rows, err := csv.NewReader(bytes.NewReader(result.Body)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"date", "% Iron Concentrate"},
		{"2017-03-10", "64"},
		{"2017-03-11", "65"},
	}, rows)
}

func TestExport_JSONVariables(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	result, err := svc.Export(context.Background(), models.ExportRequest{
		Format:    "json",
		Filter:    dataset.Filter{To: "2017-03-11"},
		Variables: []string{"iron"},
	})
	require.NoError(t, err)
	assert.Equal(t, "mining_data.json", result.Filename)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(result.Body, &rows))
	assert.Equal(t, []map[string]interface{}{
		{"date": "2017-03-10", "% Iron Concentrate": 64.0},
		{"date": "2017-03-11", "% Iron Concentrate": 65.0},
	}, rows)
}

func TestExport_TableCompressed(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	result, err := svc.Export(context.Background(), models.ExportRequest{Format: "json", Table: true, Compress: true})
	require.NoError(t, err)
	assert.Equal(t, "table_export.csv.sz", result.Filename)
	assert.True(t, result.Compressed)

	plain, err := io.ReadAll(export.Decompress(bytes.NewReader(result.Body)))
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(plain)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 6)
	assert.Len(t, rows[0], 7)
}

func TestExport_InvalidFormat(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	_, err := svc.Export(context.Background(), models.ExportRequest{Format: "pdf"})
	requireCode(t, err, CodeInvalidRequest)
}

func TestExportForecast(t *testing.T) {
	svc := newTestService(t, testRecords(), nil)

	result, err := svc.ExportForecast(context.Background(), models.ForecastRequest{Horizon: 2}, false)
	require.NoError(t, err)
	assert.Equal(t, "forecast_data.csv", result.Filename)

	rows, err := csv.NewReader(bytes.NewReader(result.Body)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Iron Forecast (%)", "Silica Forecast (%)"}, rows[0])
	assert.Equal(t, []string{"2017-03-15", "69.00", "0.50"}, rows[1])
}

func TestReload(t *testing.T) {
	src := &stubSource{records: testRecords()[:2]}
	svc := newTestService(t, testRecords(), src)

	resp, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stub", resp.Source)
	assert.Equal(t, 2, resp.Records)
	assert.NotEmpty(t, resp.LoadedAt)

	page, err := svc.Records(context.Background(), models.RecordsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestReload_Failures(t *testing.T) {
	_, err := newTestService(t, nil, nil).Reload(context.Background())
	requireCode(t, err, CodeSourceUnavailable)

	svc := newTestService(t, testRecords(), &stubSource{err: errors.New("connection refused")})
	_, err = svc.Reload(context.Background())
	requireCode(t, err, CodeReloadFailed)

	// A failed reload keeps the previous dataset
	page, err := svc.Records(context.Background(), models.RecordsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
}
