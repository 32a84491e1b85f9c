package correlation

import (
	"fmt"
	"strings"

	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
)

// Mode selects how the two samples of a matrix cell are aligned
type Mode string

const (
	// ModeIndependent filters missing values of each variable on its own and
	// pairs the survivors by position. When the two variables are missing on
	// different records, the k-th surviving x and the k-th surviving y may come
	// from different records.
	ModeIndependent Mode = "independent"

	// ModePairwise keeps only records where both variables are present.
	ModePairwise Mode = "pairwise"
)

// ParseMode resolves a mode name; empty means ModeIndependent
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeIndependent:
		return ModeIndependent, nil
	case ModePairwise:
		return ModePairwise, nil
	default:
		return "", fmt.Errorf("unknown correlation mode: %q", s)
	}
}

// Matrix is a square correlation matrix. Values[i][j] is the coefficient
// between Variables[i] and Variables[j].
type Matrix struct {
	Variables []analytics.Variable `json:"variables"`
	Values    [][]float64          `json:"matrix"`
	Mode      Mode                 `json:"mode"`
}

// At returns the coefficient between a and b, false if either is not in the matrix
func (m *Matrix) At(a, b analytics.Variable) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

func (m *Matrix) index(v analytics.Variable) int {
	for i, mv := range m.Variables {
		if mv == v {
			return i
		}
	}
	return -1
}

// BuildMatrix computes the matrix for variables (all when empty) using
// ModeIndependent sample alignment.
func BuildMatrix(ds analytics.Dataset, variables []analytics.Variable) *Matrix {
	return BuildMatrixMode(ds, variables, ModeIndependent)
}

// BuildMatrixMode computes the matrix with the given sample alignment.
// The diagonal is the coefficient of each column with itself: 1 for a
// non-constant column, 0 for a constant or empty one.
func BuildMatrixMode(ds analytics.Dataset, variables []analytics.Variable, mode Mode) *Matrix {
	if len(variables) == 0 {
		variables = analytics.AllVariables()
	}
	if mode == "" {
		mode = ModeIndependent
	}

	n := len(variables)
	m := &Matrix{
		Variables: append([]analytics.Variable(nil), variables...),
		Values:    make([][]float64, n),
		Mode:      mode,
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}

	var columns [][]float64
	if mode == ModeIndependent {
		columns = make([][]float64, n)
		for i, v := range variables {
			columns[i] = ds.Column(v)
		}
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var r float64
			if mode == ModePairwise {
				x, y := alignedPairs(ds, variables[i], variables[j])
				r = pairwise(x, y)
			} else {
				r = Pearson(columns[i], columns[j])
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}

	return m
}

// Point is one scatter chart marker
type Point struct {
	Date string  `json:"date"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Scatter returns the (x, y) pairs of records where both variables are present
func Scatter(ds analytics.Dataset, x, y analytics.Variable) []Point {
	points := make([]Point, 0, len(ds))
	for _, r := range ds {
		xv, okX := r.Get(x)
		yv, okY := r.Get(y)
		if okX && okY {
			points = append(points, Point{Date: r.Date, X: xv, Y: yv})
		}
	}
	return points
}

func alignedPairs(ds analytics.Dataset, a, b analytics.Variable) ([]float64, []float64) {
	xs := make([]float64, 0, len(ds))
	ys := make([]float64, 0, len(ds))
	for _, r := range ds {
		xv, okX := r.Get(a)
		yv, okY := r.Get(b)
		if okX && okY {
			xs = append(xs, xv)
			ys = append(ys, yv)
		}
	}
	return xs, ys
}
