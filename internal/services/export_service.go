package services

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/dataset"
	"github.com/lamchahon-maker/web-dashboard/internal/export"
	"github.com/lamchahon-maker/web-dashboard/internal/models"
	"github.com/lamchahon-maker/web-dashboard/internal/utils"
)

// Download file base names
const (
	DataExportName     = "mining_data"
	TableExportName    = "table_export"
	ForecastExportName = "forecast_data"
)

// ExportResult is a rendered download
type ExportResult struct {
	Filename    string
	ContentType string
	Compressed  bool
	Body        []byte
}

// Export renders the filtered view in the requested format
func (s *DashboardService) Export(ctx context.Context, req models.ExportRequest) (*ExportResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, invalidRequest(err)
	}
	var vars []analytics.Variable
	if len(req.Variables) > 0 {
		if vars, err = analytics.ParseVariables(req.Variables); err != nil {
			return nil, invalidRequest(err)
		}
	}
	ds, err := s.view(ctx, req.Filter)
	if err != nil {
		return nil, err
	}

	name := DataExportName
	if req.Table {
		name = TableExportName
		format = export.FormatCSV
	}

	body, err := render(req.Compress, func(w io.Writer) error {
		if req.Table {
			return export.WriteTableCSV(w, ds)
		}
		return export.Write(w, format, ds, vars)
	})
	if err != nil {
		return nil, toServiceError(err)
	}

	return &ExportResult{
		Filename:    export.Filename(name, format, req.Compress),
		ContentType: format.ContentType(),
		Compressed:  req.Compress,
		Body:        body,
	}, nil
}

// ExportForecast renders the forecast of the filtered view as CSV
func (s *DashboardService) ExportForecast(ctx context.Context, req models.ForecastRequest, compress bool) (*ExportResult, error) {
	result, err := s.Forecast(ctx, req)
	if err != nil {
		return nil, err
	}

	body, err := render(compress, func(w io.Writer) error {
		return export.WriteForecastCSV(w, result)
	})
	if err != nil {
		return nil, toServiceError(err)
	}

	return &ExportResult{
		Filename:    export.Filename(ForecastExportName, export.FormatCSV, compress),
		ContentType: export.FormatCSV.ContentType(),
		Compressed:  compress,
		Body:        body,
	}, nil
}

// render buffers the output of write, Snappy framed when compress is set
func render(compress bool, write func(io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if !compress {
		if err := write(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	zw := export.Compress(&buf)
	if err := write(zw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Reload replaces the store contents from the configured source
func (s *DashboardService) Reload(ctx context.Context) (*models.ReloadResponse, error) {
	if s.source == nil {
		return nil, NewServiceError(CodeSourceUnavailable, "no dataset source configured")
	}

	ctx, cancel := context.WithTimeout(ctx, utils.ReloadTimeout)
	defer cancel()

	start := time.Now()
	n, err := dataset.Reload(ctx, s.source, s.store)
	if err != nil {
		s.logger.Error("Dataset reload failed", "source", s.source.Name(), "error", err)
		return nil, NewServiceErrorWithDetails(CodeReloadFailed, err.Error(),
			map[string]interface{}{"source": s.source.Name()})
	}

	s.logger.Info("Dataset reloaded",
		"source", s.source.Name(),
		"records", n,
		"duration_ms", time.Since(start).Milliseconds())

	return &models.ReloadResponse{
		Source:   s.source.Name(),
		Records:  n,
		LoadedAt: s.store.LoadedAt().Format(time.RFC3339),
	}, nil
}
