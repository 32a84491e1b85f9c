package dataset

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/logging"
)

// HTTPSource downloads a CSV file, retrying transient failures
type HTTPSource struct {
	url    string
	client *retryablehttp.Client
	logger *logging.Logger
}

// NewHTTPSource creates a source for the CSV at url
func NewHTTPSource(url string, retries int, timeout time.Duration) *HTTPSource {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil
	if timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}

	return &HTTPSource{
		url:    url,
		client: client,
		logger: logging.Global().With("component", "dataset", "source", "http"),
	}
}

// Name returns "http"
func (s *HTTPSource) Name() string {
	return "http"
}

// Load downloads and parses the file
func (s *HTTPSource) Load(ctx context.Context) (analytics.Dataset, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download dataset: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download dataset: unexpected status %d", resp.StatusCode)
	}

	result, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.url, err)
	}
	if result.Skipped > 0 {
		s.logger.Warn("Skipped rows with unparsable dates", "url", s.url, "skipped", result.Skipped)
	}
	return result.Records, nil
}

// Close releases idle connections
func (s *HTTPSource) Close() error {
	s.client.HTTPClient.CloseIdleConnections()
	return nil
}
