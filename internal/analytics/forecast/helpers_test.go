package forecast

import (
	"math"
	"time"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
)

var testBaseDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// generateLinearValues creates y = slope*x + intercept for x = 0..n-1
func generateLinearValues(n int, slope, intercept float64) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = slope*float64(i) + intercept
	}
	return y
}

// generateDailyDataset creates one record per consecutive day with the given iron and silica values
func generateDailyDataset(iron, silica []float64) analytics.Dataset {
	n := len(iron)
	if len(silica) > n {
		n = len(silica)
	}
	ds := make(analytics.Dataset, n)
	for i := 0; i < n; i++ {
		r := analytics.NewRecord(testBaseDate.AddDate(0, 0, i).Format(analytics.DateLayout))
		if i < len(iron) {
			r = r.With(analytics.IronConcentrate, iron[i])
		}
		if i < len(silica) {
			r = r.With(analytics.SilicaConcentrate, silica[i])
		}
		ds[i] = r
	}
	return ds
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
