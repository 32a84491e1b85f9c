package stats

import (
	mstats "github.com/montanaflynn/stats"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
)

// DefaultHistogramBins is the bin count used by the distribution charts
const DefaultHistogramBins = 20

// KPI is the headline mean/min/max of a variable
type KPI struct {
	Count int             `json:"count"`
	Mean  analytics.Value `json:"mean"`
	Min   analytics.Value `json:"min"`
	Max   analytics.Value `json:"max"`
}

// Summarize returns the KPI card values; all missing for an empty slice
func Summarize(values []float64) KPI {
	kpi := KPI{Count: len(values)}
	if len(values) == 0 {
		return kpi
	}

	if mean, err := mstats.Mean(values); err == nil {
		kpi.Mean = analytics.Known(mean)
	}
	if lo, err := mstats.Min(values); err == nil {
		kpi.Min = analytics.Known(lo)
	}
	if hi, err := mstats.Max(values); err == nil {
		kpi.Max = analytics.Known(hi)
	}
	return kpi
}

// Bin is one histogram bucket
type Bin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// Histogram splits [min, max] into equal-width bins. Bins are half-open
// [start, end) except the last, which also includes max. Returns nil for an
// empty slice or a non-positive bin count.
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}

	lo, err := mstats.Min(values)
	if err != nil {
		return nil
	}
	hi, err := mstats.Max(values)
	if err != nil {
		return nil
	}
	binSize := (hi - lo) / float64(bins)

	result := make([]Bin, bins)
	for i := range result {
		start := lo + float64(i)*binSize
		result[i] = Bin{Start: start, End: start + binSize}
	}
	// Accumulated rounding must not push max outside the last bin
	result[bins-1].End = hi

	for _, v := range values {
		for i := range result {
			last := i == bins-1
			if v >= result[i].Start && (v < result[i].End || (last && v <= result[i].End)) {
				result[i].Count++
				break
			}
		}
	}

	return result
}
