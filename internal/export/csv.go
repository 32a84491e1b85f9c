package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
	"github.com/lamchahon-maker/web-dashboard/internal/analytics/forecast"
	"github.com/lamchahon-maker/web-dashboard/internal/utils"
)

// ForecastDecimals is the precision of exported forecast values
const ForecastDecimals = 2

// WriteCSV writes ds with a date column followed by variables (all when
// nil). Missing values are empty cells.
func WriteCSV(w io.Writer, ds analytics.Dataset, variables []analytics.Variable) error {
	variables = orAll(variables)

	cw := csv.NewWriter(w)
	if err := cw.Write(header(variables)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(variables)+1)
	for _, r := range ds {
		row[0] = r.Date
		for i, v := range variables {
			row[i+1] = ""
			if x, ok := r.Get(v); ok {
				row[i+1] = utils.FormatNumber(x)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %s: %w", r.Date, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTableCSV writes the data table columns: the date and every process
// variable in display order
func WriteTableCSV(w io.Writer, ds analytics.Dataset) error {
	return WriteCSV(w, ds, analytics.AllVariables())
}

// ForecastColumn is the CSV header of a forecast series
func ForecastColumn(v analytics.Variable) string {
	switch v {
	case analytics.IronConcentrate:
		return "Iron Forecast (%)"
	case analytics.SilicaConcentrate:
		return "Silica Forecast (%)"
	default:
		return v.Column() + " Forecast"
	}
}

// WriteForecastCSV writes one row per future date with every forecast series
// rounded to two decimals. A value that could not be computed is empty.
func WriteForecastCSV(w io.Writer, result *forecast.Result) error {
	cw := csv.NewWriter(w)

	head := make([]string, 0, len(result.Series)+1)
	head = append(head, "Date")
	for _, s := range result.Series {
		head = append(head, ForecastColumn(s.Variable))
	}
	if err := cw.Write(head); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(head))
	for i, date := range result.FutureDates {
		row[0] = date
		for j, s := range result.Series {
			row[j+1] = ""
			if i < len(s.Forecast) {
				if x, ok := s.Forecast[i].Get(); ok {
					row[j+1] = utils.FormatFixed(x, ForecastDecimals)
				}
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write forecast %s: %w", date, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
