package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/analytics/correlation"
	"github.com/lamchahon-maker/web-dashboard/internal/analytics/forecast"
	"github.com/lamchahon-maker/web-dashboard/internal/analytics/stats"
	"github.com/lamchahon-maker/web-dashboard/internal/config"
	"github.com/lamchahon-maker/web-dashboard/internal/dataset"
	"github.com/lamchahon-maker/web-dashboard/internal/logging"
	"github.com/lamchahon-maker/web-dashboard/internal/metrics"
	"github.com/lamchahon-maker/web-dashboard/internal/models"
	"github.com/lamchahon-maker/web-dashboard/internal/utils"
)

// DashboardService answers every dashboard query against the dataset store
type DashboardService struct {
	logger   *logging.Logger
	store    *dataset.Store
	source   dataset.Source
	metrics  *metrics.Metrics
	cfg      config.AnalyticsConfig
	validate *validator.Validate
}

// NewDashboardService creates a DashboardService. source may be nil, which
// disables Reload; m may be nil, which disables engine timing.
func NewDashboardService(
	logger *logging.Logger,
	store *dataset.Store,
	source dataset.Source,
	m *metrics.Metrics,
	cfg config.AnalyticsConfig,
) *DashboardService {
	return &DashboardService{
		logger:   logger,
		store:    store,
		source:   source,
		metrics:  m,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// KPIResult holds the KPI cards of a view
type KPIResult struct {
	Total     int                  `json:"total"`
	DateRange *dataset.DateRange   `json:"date_range"`
	KPIs      map[string]stats.KPI `json:"kpis"`
}

// StatsResult holds the descriptive statistics of a view, keyed by variable key
type StatsResult struct {
	Total     int                      `json:"total"`
	Variables map[string]stats.Summary `json:"variables"`
}

// HistogramResult is one distribution chart
type HistogramResult struct {
	Variable analytics.Variable `json:"variable"`
	Count    int                `json:"count"`
	Bins     []stats.Bin        `json:"bins"`
}

// ScatterResult is one scatter chart
type ScatterResult struct {
	X      analytics.Variable  `json:"x"`
	Y      analytics.Variable  `json:"y"`
	Points []correlation.Point `json:"points"`
}

// OverviewResult bundles the main dashboard panels. Forecast is nil when the
// view has nothing to forecast.
type OverviewResult struct {
	KPIs        *KPIResult               `json:"kpis"`
	Stats       *StatsResult             `json:"stats"`
	Correlation *correlation.Matrix      `json:"correlation"`
	Forecast    *models.ForecastResponse `json:"forecast"`
}

// view validates f and returns the matching snapshot
func (s *DashboardService) view(ctx context.Context, f dataset.Filter) (analytics.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, toServiceError(err)
	}
	if err := s.validate.Struct(f); err != nil {
		return nil, toServiceError(err)
	}
	ds, err := s.store.View(f)
	if err != nil {
		return nil, toServiceError(err)
	}
	return ds, nil
}

func (s *DashboardService) check(req interface{}) error {
	if err := s.validate.Struct(req); err != nil {
		return toServiceError(err)
	}
	return nil
}

func (s *DashboardService) observe(engine string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveEngine(engine, start)
	}
}

// Records returns the filtered, sorted and paginated table
func (s *DashboardService) Records(ctx context.Context, req models.RecordsRequest) (*dataset.Page, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	ds, err := s.view(ctx, req.Filter)
	if err != nil {
		return nil, err
	}

	dir, err := dataset.ParseDirection(req.Order)
	if err != nil {
		return nil, toServiceError(err)
	}
	if req.Sort != "" {
		if ds, err = dataset.Sort(ds, req.Sort, dir); err != nil {
			return nil, toServiceError(err)
		}
	}

	size := req.PageSize
	switch {
	case size == 0:
		size = utils.DefaultPageSize
	case size < 0:
		size = 0 // Paginate treats a non-positive size as one page of everything
	}
	page := dataset.Paginate(ds, req.Page, size)
	return &page, nil
}

// KPIs computes the KPI cards of every variable
func (s *DashboardService) KPIs(ctx context.Context, f dataset.Filter) (*KPIResult, error) {
	ds, err := s.view(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.kpis(ds), nil
}

func (s *DashboardService) kpis(ds analytics.Dataset) *KPIResult {
	defer s.observe("kpi", time.Now())

	result := &KPIResult{Total: ds.Len(), KPIs: make(map[string]stats.KPI, analytics.NumVariables)}
	if r, ok := dataset.RangeOf(ds); ok {
		result.DateRange = &r
	}
	for _, v := range analytics.AllVariables() {
		result.KPIs[v.Key()] = stats.Summarize(ds.Column(v))
	}
	return result
}

// Stats computes the descriptive statistics of the named variables (all when empty)
func (s *DashboardService) Stats(ctx context.Context, f dataset.Filter, names []string) (*StatsResult, error) {
	vars, err := analytics.ParseVariables(names)
	if err != nil {
		return nil, invalidRequest(err)
	}
	ds, err := s.view(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.stats(ds, vars), nil
}

func (s *DashboardService) stats(ds analytics.Dataset, vars []analytics.Variable) *StatsResult {
	defer s.observe("stats", time.Now())

	result := &StatsResult{Total: ds.Len(), Variables: make(map[string]stats.Summary, len(vars))}
	for _, v := range vars {
		result.Variables[v.Key()] = stats.Describe(ds.Column(v))
	}
	return result
}

// Histogram bins one variable
func (s *DashboardService) Histogram(ctx context.Context, req models.HistogramRequest) (*HistogramResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	v, err := analytics.ParseVariable(req.Variable)
	if err != nil {
		return nil, invalidRequest(err)
	}
	ds, err := s.view(ctx, req.Filter)
	if err != nil {
		return nil, err
	}

	bins := req.Bins
	if bins == 0 {
		bins = s.cfg.HistogramBins
	}
	if bins <= 0 {
		bins = stats.DefaultHistogramBins
	}

	defer s.observe("histogram", time.Now())
	values := ds.Column(v)
	result := &HistogramResult{Variable: v, Count: len(values), Bins: stats.Histogram(values, bins)}
	if result.Bins == nil {
		result.Bins = []stats.Bin{}
	}
	return result, nil
}

// Correlation builds the correlation matrix
func (s *DashboardService) Correlation(ctx context.Context, req models.CorrelationRequest) (*correlation.Matrix, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	vars, mode, err := s.correlationParams(req)
	if err != nil {
		return nil, err
	}
	ds, err := s.view(ctx, req.Filter)
	if err != nil {
		return nil, err
	}
	return s.correlation(ds, vars, mode), nil
}

func (s *DashboardService) correlationParams(req models.CorrelationRequest) ([]analytics.Variable, correlation.Mode, error) {
	vars, err := analytics.ParseVariables(req.Variables)
	if err != nil {
		return nil, "", invalidRequest(err)
	}
	name := req.Mode
	if name == "" {
		name = s.cfg.CorrelationMode
	}
	mode, err := correlation.ParseMode(name)
	if err != nil {
		return nil, "", invalidRequest(err)
	}
	return vars, mode, nil
}

func (s *DashboardService) correlation(ds analytics.Dataset, vars []analytics.Variable, mode correlation.Mode) *correlation.Matrix {
	defer s.observe("correlation", time.Now())
	return correlation.BuildMatrixMode(ds, vars, mode)
}

// Scatter extracts the (x, y) pairs of two variables
func (s *DashboardService) Scatter(ctx context.Context, req models.ScatterRequest) (*ScatterResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	x, err := analytics.ParseVariable(req.X)
	if err != nil {
		return nil, invalidRequest(err)
	}
	y, err := analytics.ParseVariable(req.Y)
	if err != nil {
		return nil, invalidRequest(err)
	}
	ds, err := s.view(ctx, req.Filter)
	if err != nil {
		return nil, err
	}

	defer s.observe("scatter", time.Now())
	return &ScatterResult{X: x, Y: y, Points: correlation.Scatter(ds, x, y)}, nil
}

// Forecast fits and projects the requested variables (iron and silica by default)
func (s *DashboardService) Forecast(ctx context.Context, req models.ForecastRequest) (*forecast.Result, error) {
	cfg, err := s.forecastConfig(req)
	if err != nil {
		return nil, err
	}
	ds, err := s.view(ctx, req.Filter)
	if err != nil {
		return nil, err
	}
	return s.forecast(ds, cfg)
}

func (s *DashboardService) forecastConfig(req models.ForecastRequest) (forecast.Config, error) {
	if err := s.check(req); err != nil {
		return forecast.Config{}, err
	}

	horizon := req.Horizon
	if horizon == 0 {
		horizon = s.cfg.ForecastHorizon
	}
	if s.cfg.MaxForecastHorizon > 0 && horizon > s.cfg.MaxForecastHorizon {
		return forecast.Config{}, NewServiceErrorWithDetails(CodeInvalidRequest,
			fmt.Sprintf("horizon %d exceeds the maximum of %d days", horizon, s.cfg.MaxForecastHorizon),
			map[string]interface{}{"max_horizon": s.cfg.MaxForecastHorizon})
	}

	cfg := forecast.DefaultConfig(horizon)
	if len(req.Variables) > 0 {
		vars, err := analytics.ParseVariables(req.Variables)
		if err != nil {
			return forecast.Config{}, invalidRequest(err)
		}
		cfg.Variables = vars
	}

	cfg.Window = req.Window
	if cfg.Window == 0 {
		cfg.Window = s.cfg.MovingAverageWindow
	}
	if cfg.Window <= 0 {
		cfg.Window = forecast.DefaultWindow
	}

	name := req.Cadence
	if name == "" {
		name = s.cfg.Cadence
	}
	cadence, err := forecast.ParseCadence(name)
	if err != nil {
		return forecast.Config{}, invalidRequest(err)
	}
	cfg.Cadence = cadence

	return cfg, nil
}

func (s *DashboardService) forecast(ds analytics.Dataset, cfg forecast.Config) (*forecast.Result, error) {
	defer s.observe("forecast", time.Now())

	result, err := forecast.Compute(ds, cfg)
	if err != nil {
		return nil, toServiceError(err)
	}
	return result, nil
}

// Overview computes the KPI, statistics, correlation and forecast panels of
// one view concurrently. The engines share the snapshot read-only.
func (s *DashboardService) Overview(ctx context.Context, f dataset.Filter) (*OverviewResult, error) {
	ds, err := s.view(ctx, f)
	if err != nil {
		return nil, err
	}

	mode, err := correlation.ParseMode(s.cfg.CorrelationMode)
	if err != nil {
		return nil, invalidRequest(err)
	}
	fcfg, err := s.forecastConfig(models.ForecastRequest{})
	if err != nil {
		return nil, err
	}

	result := &OverviewResult{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result.KPIs = s.kpis(ds)
		return nil
	})
	g.Go(func() error {
		result.Stats = s.stats(ds, analytics.AllVariables())
		return nil
	})
	g.Go(func() error {
		result.Correlation = s.correlation(ds, analytics.AllVariables(), mode)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		fc, err := s.forecast(ds, fcfg)
		if err != nil {
			var svcErr *ServiceError
			if errors.As(err, &svcErr) && svcErr.Code == CodeNoData {
				return nil
			}
			return err
		}
		resp := models.NewForecastResponse(fc)
		result.Forecast = &resp
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, toServiceError(err)
	}
	return result, nil
}
