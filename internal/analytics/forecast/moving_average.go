package forecast

import "github.com/lamchahon-maker/web-dashboard/internal/analytics"

// DefaultWindow is the trailing window of the smoothed trend line
const DefaultWindow = 7

// MovingAverage returns the trailing simple moving average of values.
// Position i is missing for i < window-1, otherwise it is the mean of
// values[i-window+1 : i+1]. A non-positive window uses DefaultWindow.
func MovingAverage(values []float64, window int) []analytics.Value {
	if window <= 0 {
		window = DefaultWindow
	}

	result := make([]analytics.Value, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			result[i] = analytics.Known(sum / float64(window))
		}
	}
	return result
}
