package utils

import (
	"math"
	"strconv"
	"strings"
)

// ToFloat64 converts various numeric types to float64.
// Returns the converted value and true if successful, or 0 and false if conversion fails.
// Strings and byte slices are parsed with ParseNumber.
func ToFloat64(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}

	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case string:
		return ParseNumber(val)
	case []byte:
		return ParseNumber(string(val))
	default:
		return 0, false
	}
}

// ParseNumber parses a dataset cell. Empty cells, "NaN", "null" and infinities
// are reported as not present. A single comma is accepted as the decimal
// separator ("64,03") since the plant exports use that locale.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "na", "n/a", "-":
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if strings.Count(s, ",") != 1 || strings.Contains(s, ".") {
			return 0, false
		}
		f, err = strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatNumber renders f in its shortest round-trip form, the way it is
// matched by free-text search and written to CSV
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatFixed renders f with a fixed number of decimals
func FormatFixed(f float64, decimals int) string {
	return strconv.FormatFloat(f, 'f', decimals, 64)
}
