package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
)

// Direction is a sort order
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection resolves "asc" / "desc"; empty means Ascending
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	default:
		return "", fmt.Errorf("%w: sort direction %q", ErrInvalidFilter, s)
	}
}

// DateColumn is the sort key of the record date
const DateColumn = "date"

// Sort returns a sorted copy of ds by column ("date", a column name or a
// variable key). Missing values are always placed last, whatever the
// direction. The sort is stable. An empty column returns ds unchanged.
func Sort(ds analytics.Dataset, column string, dir Direction) (analytics.Dataset, error) {
	out := ds.Clone()
	column = strings.TrimSpace(column)
	if column == "" {
		return out, nil
	}

	desc := dir == Descending
	if strings.EqualFold(column, DateColumn) {
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				return out[i].Date > out[j].Date
			}
			return out[i].Date < out[j].Date
		})
		return out, nil
	}

	v, err := analytics.ParseVariable(column)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, okA := out[i].Get(v)
		b, okB := out[j].Get(v)
		switch {
		case !okA:
			return false
		case !okB:
			return true
		case desc:
			return a > b
		default:
			return a < b
		}
	})
	return out, nil
}

// Page is one slice of a table
type Page struct {
	Records    analytics.Dataset `json:"records"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	Total      int               `json:"total"`
}

// Paginate returns the 1-based page of ds. A non-positive size returns
// everything as a single page. Pages past the end are clamped to the last
// page, and pages below 1 to the first.
func Paginate(ds analytics.Dataset, page, size int) Page {
	total := len(ds)
	if size <= 0 {
		size = total
	}

	totalPages := 1
	if size > 0 {
		totalPages = (total + size - 1) / size
	}
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	if start > total {
		start = total
	}

	records := ds[start:end:end]
	if records == nil {
		records = analytics.Dataset{}
	}

	return Page{
		Records:    records,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		Total:      total,
	}
}
