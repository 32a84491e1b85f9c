package models

import (
	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/analytics/forecast"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Records   int    `json:"records"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ReloadResponse reports a dataset reload
type ReloadResponse struct {
	Source   string `json:"source"`
	Records  int    `json:"records"`
	LoadedAt string `json:"loaded_at"`
}

// ForecastResponse is the flat forecast chart payload. Historical and moving
// average arrays are the compacted daily series of each variable: a date on
// which the variable had no values is dropped, not rendered as a gap, so
// they can be shorter than HistoricalDates. Series[i].Dates carries the
// dates of each compacted series. Forecast arrays follow FutureDates.
type ForecastResponse struct {
	HistoricalDates  []string          `json:"historical_dates"`
	HistoricalIron   []analytics.Value `json:"historical_iron"`
	HistoricalSilica []analytics.Value `json:"historical_silica"`
	IronMA           []analytics.Value `json:"iron_ma"`
	SilicaMA         []analytics.Value `json:"silica_ma"`
	FutureDates      []string          `json:"future_dates"`
	IronForecast     []analytics.Value `json:"iron_forecast"`
	SilicaForecast   []analytics.Value `json:"silica_forecast"`
	IronR2           analytics.Value   `json:"iron_r2"`
	SilicaR2         analytics.Value   `json:"silica_r2"`
	IronSlope        analytics.Value   `json:"iron_slope"`
	SilicaSlope      analytics.Value   `json:"silica_slope"`

	Horizon int                       `json:"horizon"`
	Cadence forecast.Cadence          `json:"cadence"`
	Series  []forecast.SeriesForecast `json:"series"`
}

// NewForecastResponse flattens result. Iron and silica fields stay empty
// (and their scalars null) when those variables were not forecast.
func NewForecastResponse(result *forecast.Result) ForecastResponse {
	resp := ForecastResponse{
		HistoricalDates: result.HistoricalDates,
		FutureDates:     result.FutureDates,
		Horizon:         result.Horizon,
		Cadence:         result.Cadence,
		Series:          result.Series,
	}

	if s, ok := result.Get(analytics.IronConcentrate); ok {
		resp.HistoricalIron = analytics.Values(s.Historical)
		resp.IronMA = s.MovingAverage
		resp.IronForecast = s.Forecast
		resp.IronR2 = s.R2
		resp.IronSlope = s.Slope
	}
	if s, ok := result.Get(analytics.SilicaConcentrate); ok {
		resp.HistoricalSilica = analytics.Values(s.Historical)
		resp.SilicaMA = s.MovingAverage
		resp.SilicaForecast = s.Forecast
		resp.SilicaR2 = s.R2
		resp.SilicaSlope = s.Slope
	}

	return resp
}
