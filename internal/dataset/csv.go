package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/utils"
)

// dateLayouts are the accepted date cell formats, tried in order
var dateLayouts = []string{
	analytics.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// NormalizeDate parses a date cell and returns it as YYYY-MM-DD
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(analytics.DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// ParseResult is the outcome of parsing a CSV dataset
type ParseResult struct {
	Records analytics.Dataset
	Skipped int // Rows dropped for an unparsable date
}

// ParseCSV reads a dataset with a header row. The date column is required;
// variable columns are matched by column name or short key and may be
// absent, in which case that variable is missing on every record. Empty or
// unparsable numeric cells are missing.
func ParseCSV(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	dateIdx := -1
	columns := make(map[int]analytics.Variable)
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if strings.EqualFold(name, DateColumn) {
			dateIdx = i
			continue
		}
		if v, err := analytics.ParseVariable(name); err == nil {
			columns[i] = v
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, DateColumn)
	}

	result := &ParseResult{Records: make(analytics.Dataset, 0, 1024)}
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if isBlank(row) {
			continue
		}
		if dateIdx >= len(row) {
			result.Skipped++
			continue
		}

		date, err := NormalizeDate(row[dateIdx])
		if err != nil {
			result.Skipped++
			continue
		}

		rec := analytics.NewRecord(date)
		for i, v := range columns {
			if i >= len(row) {
				continue
			}
			if x, ok := utils.ParseNumber(row[i]); ok {
				rec = rec.With(v, x)
			}
		}
		result.Records = append(result.Records, rec)
	}

	if len(result.Records) == 0 {
		return nil, ErrEmptyDataset
	}
	return result, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
