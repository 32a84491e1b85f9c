// Package export serializes dataset views and forecast results for download.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat resolves a format name; empty means CSV
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// Write serializes the date column and variables (all when nil) of ds in
// format f
func Write(w io.Writer, f Format, ds analytics.Dataset, variables []analytics.Variable) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, ds, variables)
	case FormatJSON:
		return WriteJSON(w, ds, variables)
	case FormatXLSX:
		return WriteXLSX(w, ds, variables)
	default:
		return fmt.Errorf("unsupported export format: %q", string(f))
	}
}

// header returns the column header row for variables
func header(variables []analytics.Variable) []string {
	row := make([]string, 0, len(variables)+1)
	row = append(row, "date")
	for _, v := range variables {
		row = append(row, v.Column())
	}
	return row
}

func orAll(variables []analytics.Variable) []analytics.Variable {
	if len(variables) == 0 {
		return analytics.AllVariables()
	}
	return variables
}
