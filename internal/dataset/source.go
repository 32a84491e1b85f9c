package dataset

import (
	"context"
	"fmt"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/config"
	"github.com/lamchahon-maker/web-dashboard/internal/utils"
)

// Source loads the complete dataset
type Source interface {
	// Name identifies the source in logs and metrics
	Name() string
	// Load reads every record
	Load(ctx context.Context) (analytics.Dataset, error)
	// Close releases connections held by the source
	Close() error
}

// NewSource creates a Source based on the dataset configuration
func NewSource(cfg config.DatasetConfig) (Source, error) {
	switch cfg.SourceType() {
	case utils.SourceTypeFile:
		return NewFileSource(cfg.Path), nil
	case utils.SourceTypeHTTP:
		return NewHTTPSource(cfg.URL, cfg.Retries, cfg.Timeout), nil
	case utils.SourceTypePostgres:
		return NewPostgresSource(cfg.DSN, cfg.Table)
	default:
		return nil, fmt.Errorf("unsupported dataset source: %s", cfg.Source)
	}
}

// Reload loads src into store, replacing its contents.
// The store is left untouched when loading fails.
func Reload(ctx context.Context, src Source, store *Store) (int, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	store.Replace(records)
	return len(records), nil
}
