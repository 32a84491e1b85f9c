// Package forecast fits per-variable linear trends over daily aggregate
// series and projects them a number of days ahead.
//
// Each variable is aggregated independently and fitted against its own dense
// offset axis 0..n-1, so a series with skipped dates is treated as if the
// surviving days were consecutive.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
)

var (
	// ErrNoData is returned when there is nothing to fit
	ErrNoData = errors.New("no data to forecast")

	// ErrInvalidHorizon is returned for a non-positive horizon
	ErrInvalidHorizon = errors.New("forecast horizon must be positive")
)

// Cadence selects how future dates are spaced
type Cadence string

const (
	// CadenceDaily adds 1..horizon calendar days to the last historical date
	CadenceDaily Cadence = "daily"

	// CadenceObserved steps by the median gap between historical dates
	CadenceObserved Cadence = "observed"
)

// ParseCadence resolves a cadence name; empty means CadenceDaily
func ParseCadence(s string) (Cadence, error) {
	switch Cadence(strings.ToLower(strings.TrimSpace(s))) {
	case "", CadenceDaily:
		return CadenceDaily, nil
	case CadenceObserved:
		return CadenceObserved, nil
	default:
		return "", fmt.Errorf("unknown forecast cadence: %q", s)
	}
}

// Config holds forecast parameters
type Config struct {
	Variables []analytics.Variable // Variables to forecast
	Horizon   int                  // Number of future days
	Window    int                  // Moving average window
	Cadence   Cadence              // Future date spacing
}

// DefaultConfig returns the dashboard defaults: iron and silica, 7-day smoothing
func DefaultConfig(horizon int) Config {
	return Config{
		Variables: []analytics.Variable{analytics.IronConcentrate, analytics.SilicaConcentrate},
		Horizon:   horizon,
		Window:    DefaultWindow,
		Cadence:   CadenceDaily,
	}
}

// SeriesForecast is the fitted trend and projection of one variable
type SeriesForecast struct {
	Variable      analytics.Variable `json:"variable"`
	Dates         []string           `json:"dates"`
	Historical    []float64          `json:"historical"`
	MovingAverage []analytics.Value  `json:"moving_average"`
	Forecast      []analytics.Value  `json:"forecast"`
	Slope         analytics.Value    `json:"slope"`
	Intercept     analytics.Value    `json:"intercept"`
	R2            analytics.Value    `json:"r2"`
	MAE           analytics.Value    `json:"mae"`
	RMSE          analytics.Value    `json:"rmse"`
}

// Result contains every forecast series plus the shared date axes
type Result struct {
	HistoricalDates []string         `json:"historical_dates"`
	FutureDates     []string         `json:"future_dates"`
	Horizon         int              `json:"horizon"`
	Cadence         Cadence          `json:"cadence"`
	Series          []SeriesForecast `json:"series"`
}

// Get returns the forecast of v
func (r *Result) Get(v analytics.Variable) (*SeriesForecast, bool) {
	for i := range r.Series {
		if r.Series[i].Variable == v {
			return &r.Series[i], true
		}
	}
	return nil, false
}

// Compute fits and projects every configured variable over ds.
//
// HistoricalDates is the distinct record dates of ds; future dates continue
// from its last entry. Each series carries its own Dates, which may be
// shorter when a variable is missing on whole days.
func Compute(ds analytics.Dataset, config Config) (*Result, error) {
	if config.Horizon <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, config.Horizon)
	}
	variables := config.Variables
	if len(variables) == 0 {
		variables = DefaultConfig(config.Horizon).Variables
	}
	cadence := config.Cadence
	if cadence == "" {
		cadence = CadenceDaily
	}

	dates := ds.Dates()
	if len(dates) == 0 {
		return nil, ErrNoData
	}

	series := make([]Series, len(variables))
	for i, v := range variables {
		series[i] = DailySeries(ds, v)
		if series[i].Len() == 0 {
			return nil, fmt.Errorf("%w: %s has no values", ErrNoData, v.Column())
		}
	}

	futureDates, err := FutureDates(dates, config.Horizon, cadence)
	if err != nil {
		return nil, err
	}

	result := &Result{
		HistoricalDates: dates,
		FutureDates:     futureDates,
		Horizon:         config.Horizon,
		Cadence:         cadence,
		Series:          make([]SeriesForecast, len(series)),
	}
	for i, s := range series {
		result.Series[i] = fit(s, config.Horizon, config.Window)
	}

	return result, nil
}

func fit(s Series, horizon, window int) SeriesForecast {
	model := LinearRegression(Offsets(s.Len()), s.Values)

	projection := make([]analytics.Value, horizon)
	for i := range projection {
		projection[i] = analytics.Known(model.Predict(float64(s.Len() + i)))
	}

	return SeriesForecast{
		Variable:      s.Variable,
		Dates:         s.Dates,
		Historical:    s.Values,
		MovingAverage: MovingAverage(s.Values, window),
		Forecast:      projection,
		Slope:         analytics.Known(model.Slope),
		Intercept:     analytics.Known(model.Intercept),
		R2:            analytics.Known(CalculateR2(s.Values, model)),
		MAE:           analytics.Known(CalculateMAE(s.Values, model)),
		RMSE:          analytics.Known(CalculateRMSE(s.Values, model)),
	}
}

// FutureDates returns horizon dates after the last of the ascending dates
func FutureDates(dates []string, horizon int, cadence Cadence) ([]string, error) {
	if len(dates) == 0 {
		return nil, ErrNoData
	}
	last, err := time.Parse(analytics.DateLayout, dates[len(dates)-1])
	if err != nil {
		return nil, fmt.Errorf("parse last historical date: %w", err)
	}

	step := 1
	if cadence == CadenceObserved {
		step = observedStep(dates)
	}

	future := make([]string, horizon)
	for i := range future {
		future[i] = last.AddDate(0, 0, step*(i+1)).Format(analytics.DateLayout)
	}
	return future, nil
}

// observedStep returns the median day gap between consecutive dates, at least 1
func observedStep(dates []string) int {
	gaps := make([]int, 0, len(dates))
	var prev time.Time
	for i, d := range dates {
		t, err := time.Parse(analytics.DateLayout, d)
		if err != nil {
			continue
		}
		if i > 0 && !prev.IsZero() {
			gaps = append(gaps, int(math.Round(t.Sub(prev).Hours()/24)))
		}
		prev = t
	}
	if len(gaps) == 0 {
		return 1
	}

	sort.Ints(gaps)
	mid := len(gaps) / 2
	median := float64(gaps[mid])
	if len(gaps)%2 == 0 {
		median = float64(gaps[mid-1]+gaps[mid]) / 2
	}

	step := int(math.Round(median))
	if step < 1 {
		return 1
	}
	return step
}
