package forecast

import (
	"sort"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
)

// Series is a daily aggregate series: one mean value per date, ascending.
// Dates where the variable was missing on every record are absent, so
// consecutive entries need not be consecutive calendar days.
type Series struct {
	Variable analytics.Variable `json:"variable"`
	Dates    []string           `json:"dates"`
	Values   []float64          `json:"values"`
}

// Len returns the number of aggregated dates
func (s Series) Len() int {
	return len(s.Values)
}

// DailySeries groups records by date and averages the non-missing values of v
func DailySeries(ds analytics.Dataset, v analytics.Variable) Series {
	type acc struct {
		sum   float64
		count int
	}

	groups := make(map[string]*acc)
	for _, r := range ds {
		x, ok := r.Get(v)
		if !ok {
			continue
		}
		g, exists := groups[r.Date]
		if !exists {
			g = &acc{}
			groups[r.Date] = g
		}
		g.sum += x
		g.count++
	}

	dates := make([]string, 0, len(groups))
	for date := range groups {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	values := make([]float64, len(dates))
	for i, date := range dates {
		g := groups[date]
		values[i] = g.sum / float64(g.count)
	}

	return Series{Variable: v, Dates: dates, Values: values}
}
