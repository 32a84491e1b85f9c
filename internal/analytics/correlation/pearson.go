// Package correlation computes Pearson coefficients between process
// variables and the full correlation matrix used by the heatmap.
package correlation

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Pearson returns the Pearson correlation coefficient of x and y over their
// first min(len(x), len(y)) elements, paired by index.
//
// Returns 0 when there are no pairs or either input has zero variance. The
// degenerate case is reported as 0 rather than NaN so the heatmap stays
// renderable.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n == 0 {
		return 0
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	fn := float64(n)
	numerator := fn*sumXY - sumX*sumY
	product := (fn*sumX2 - sumX*sumX) * (fn*sumY2 - sumY*sumY)
	// Rounding on constant data can leave a tiny negative product
	if !(product > 0) {
		return 0
	}

	return numerator / math.Sqrt(product)
}

// pairwise computes the coefficient with gonum over already aligned samples
func pairwise(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
