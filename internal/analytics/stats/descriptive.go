// Package stats implements descriptive statistics over a single variable's
// non-missing values. Every function is pure and never mutates its input.
//
// Degenerate inputs are not rejected: an empty slice, a sample too small for
// the estimator (skewness needs n >= 3, kurtosis n >= 4) or a zero standard
// deviation yields NaN or ±Inf. Describe converts such results into missing
// analytics.Values so callers can render a placeholder.
package stats

import (
	"math"
	"sort"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
)

// OutlierMultiplier is the IQR fence multiplier
const OutlierMultiplier = 1.5

// Mean returns the arithmetic mean, NaN for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the population variance (divides by n)
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(values))
}

// StdDev returns the population standard deviation
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Skewness returns the adjusted Fisher-Pearson standardized moment coefficient
//
//	n / ((n-1)(n-2)) * Σ((x-mean)/σ)^3
//
// Requires n >= 3.
func Skewness(values []float64) float64 {
	n := float64(len(values))
	mean := Mean(values)
	stdDev := StdDev(values)

	sum := 0.0
	for _, v := range values {
		z := (v - mean) / stdDev
		sum += z * z * z
	}
	return (n / ((n - 1) * (n - 2))) * sum
}

// Kurtosis returns the sample excess kurtosis
//
//	n(n+1) / ((n-1)(n-2)(n-3)) * Σ((x-mean)/σ)^4 - 3(n-1)^2 / ((n-2)(n-3))
//
// Requires n >= 4.
func Kurtosis(values []float64) float64 {
	n := float64(len(values))
	mean := Mean(values)
	stdDev := StdDev(values)

	sum := 0.0
	for _, v := range values {
		z := (v - mean) / stdDev
		sum += z * z * z * z
	}
	return (n*(n+1))/((n-1)*(n-2)*(n-3))*sum - (3*(n-1)*(n-1))/((n-2)*(n-3))
}

// Percentile returns the p-th percentile (0 <= p <= 100) using linear
// interpolation between the closest ranks of a sorted copy.
// Returns NaN for an empty slice or p outside [0, 100].
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 || math.IsNaN(p) || p < 0 || p > 100 {
		return math.NaN()
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return percentileSorted(sorted, p)
}

// percentileSorted interpolates on already sorted data
func percentileSorted(sorted []float64, p float64) float64 {
	index := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	weight := index - float64(lower)

	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// OutlierReport is the result of IQR fencing
type OutlierReport struct {
	Count      int             `json:"count"`
	LowerBound analytics.Value `json:"lower_bound"`
	UpperBound analytics.Value `json:"upper_bound"`
	Values     []float64       `json:"values"`
}

// DetectOutliers flags values strictly outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
// Outlier values are returned in input order.
func DetectOutliers(values []float64) OutlierReport {
	report := OutlierReport{Values: []float64{}}
	if len(values) == 0 {
		return report
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := percentileSorted(sorted, 25)
	q3 := percentileSorted(sorted, 75)
	iqr := q3 - q1
	lowerBound := q1 - OutlierMultiplier*iqr
	upperBound := q3 + OutlierMultiplier*iqr

	for _, v := range values {
		if v < lowerBound || v > upperBound {
			report.Values = append(report.Values, v)
		}
	}
	report.Count = len(report.Values)
	report.LowerBound = analytics.Known(lowerBound)
	report.UpperBound = analytics.Known(upperBound)

	return report
}

// Summary holds the descriptive statistics of one variable
type Summary struct {
	Count          int             `json:"count"`
	Mean           analytics.Value `json:"mean"`
	StdDev         analytics.Value `json:"std_dev"`
	Variance       analytics.Value `json:"variance"`
	Skewness       analytics.Value `json:"skewness"`
	Kurtosis       analytics.Value `json:"kurtosis"`
	Percentile25   analytics.Value `json:"percentile_25"`
	Percentile50   analytics.Value `json:"percentile_50"`
	Percentile75   analytics.Value `json:"percentile_75"`
	Outliers       OutlierReport   `json:"outliers"`
	OutlierPercent analytics.Value `json:"outlier_percent"`
}

// Describe computes the full descriptive summary of values.
// Statistics that cannot be computed for the sample are missing.
func Describe(values []float64) Summary {
	outliers := DetectOutliers(values)

	summary := Summary{
		Count:        len(values),
		Mean:         analytics.Known(Mean(values)),
		StdDev:       analytics.Known(StdDev(values)),
		Variance:     analytics.Known(Variance(values)),
		Skewness:     analytics.Known(Skewness(values)),
		Kurtosis:     analytics.Known(Kurtosis(values)),
		Percentile25: analytics.Known(Percentile(values, 25)),
		Percentile50: analytics.Known(Percentile(values, 50)),
		Percentile75: analytics.Known(Percentile(values, 75)),
		Outliers:     outliers,
	}
	if len(values) > 0 {
		summary.OutlierPercent = analytics.Known(float64(outliers.Count) / float64(len(values)) * 100)
	}

	return summary
}
