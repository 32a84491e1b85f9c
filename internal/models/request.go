package models

import (
	"github.com/lamchahon-maker/web-dashboard/internal/dataset"
)

// RecordsRequest is the data table query
type RecordsRequest struct {
	dataset.Filter
	Sort     string `json:"sort"`
	Order    string `json:"order" validate:"omitempty,oneof=asc desc ASC DESC"`
	Page     int    `json:"page" validate:"gte=0"`
	PageSize int    `json:"page_size" validate:"gte=-1,lte=10000"`
}

// PageSizeAll as a RecordsRequest.PageSize returns every row in one page
const PageSizeAll = -1

// HistogramRequest selects the variable of a distribution chart
type HistogramRequest struct {
	dataset.Filter
	Variable string `json:"variable" validate:"required"`
	Bins     int    `json:"bins" validate:"gte=0,lte=500"`
}

// ScatterRequest selects the axes of a scatter chart
type ScatterRequest struct {
	dataset.Filter
	X string `json:"x" validate:"required"`
	Y string `json:"y" validate:"required"`
}

// CorrelationRequest selects the matrix variables and sample alignment
type CorrelationRequest struct {
	dataset.Filter
	Variables []string `json:"variables"`
	Mode      string   `json:"mode" validate:"omitempty,oneof=independent pairwise"`
}

// ForecastRequest is the body of POST /v1/forecast and the parsed query of GET
type ForecastRequest struct {
	dataset.Filter
	Variables []string `json:"variables"`
	Horizon   int      `json:"horizon" validate:"gte=0"`
	Window    int      `json:"window" validate:"gte=0,lte=365"`
	Cadence   string   `json:"cadence" validate:"omitempty,oneof=daily observed"`
}

// ExportRequest selects the export format
type ExportRequest struct {
	dataset.Filter
	Format    string   `json:"format" validate:"omitempty,oneof=csv json xlsx"`
	Variables []string `json:"variables"`
	Table     bool     `json:"table"`
	Compress  bool     `json:"compress"`
}
