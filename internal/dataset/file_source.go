package dataset

import (
	"context"
	"fmt"
	"os"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/logging"
)

// FileSource reads a local CSV file
type FileSource struct {
	path   string
	logger *logging.Logger
}

// NewFileSource creates a source for the CSV file at path
func NewFileSource(path string) *FileSource {
	return &FileSource{
		path:   path,
		logger: logging.Global().With("component", "dataset", "source", "file"),
	}
}

// Name returns "file"
func (s *FileSource) Name() string {
	return "file"
}

// Load parses the whole file
func (s *FileSource) Load(ctx context.Context) (analytics.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	result, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if result.Skipped > 0 {
		s.logger.Warn("Skipped rows with unparsable dates", "path", s.path, "skipped", result.Skipped)
	}
	return result.Records, nil
}

// Close is a no-op
func (s *FileSource) Close() error {
	return nil
}
