package forecast

import "math"

// Model is a fitted least-squares line y = Slope*x + Intercept
type Model struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// LinearRegression fits an ordinary least-squares line through (x[i], y[i])
// using the closed-form sum formulas. Only the first min(len(x), len(y))
// pairs are used.
//
// Requires at least two distinct x values; otherwise both coefficients are NaN.
func LinearRegression(x, y []float64) Model {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
	}

	fn := float64(n)
	denominator := fn*sumX2 - sumX*sumX
	if denominator == 0 {
		return Model{Slope: math.NaN(), Intercept: math.NaN()}
	}

	slope := (fn*sumXY - sumX*sumY) / denominator
	intercept := (sumY - slope*sumX) / fn

	return Model{Slope: slope, Intercept: intercept}
}

// Predict evaluates the line at x
func (m Model) Predict(x float64) float64 {
	return m.Slope*x + m.Intercept
}

// Offsets returns the dense axis 0..n-1
func Offsets(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}

// CalculateR2 returns the coefficient of determination of m against y, with
// y[i] observed at offset i. NaN for an empty or constant y.
func CalculateR2(y []float64, m Model) float64 {
	if len(y) == 0 {
		return math.NaN()
	}

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var ssRes, ssTot float64
	for i, v := range y {
		residual := v - m.Predict(float64(i))
		ssRes += residual * residual
		diff := v - mean
		ssTot += diff * diff
	}

	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}

// CalculateMAE returns the mean absolute error of m against y at offsets 0..n-1
func CalculateMAE(y []float64, m Model) float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i, v := range y {
		sum += math.Abs(v - m.Predict(float64(i)))
	}
	return sum / float64(len(y))
}

// CalculateRMSE returns the root mean squared error of m against y at offsets 0..n-1
func CalculateRMSE(y []float64, m Model) float64 {
	if len(y) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i, v := range y {
		diff := v - m.Predict(float64(i))
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(y)))
}
