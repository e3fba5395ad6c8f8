package distance

import (
	"fmt"
	"math"
	"strings"

	"github.com/yyyoichi/fuzzyc/internal/errs"
	"gonum.org/v1/gonum/floats"
)

// Metric selects the dissimilarity between a point and a center.
// Every metric is non-negative, zero for identical vectors and finite for finite input.
type Metric int

const (
	SquaredEuclidean Metric = iota
	Euclidean
	Manhattan
	Chebyshev
)

func (m Metric) String() string {
	switch m {
	case SquaredEuclidean:
		return "sqeuclidean"
	case Euclidean:
		return "euclidean"
	case Manhattan:
		return "manhattan"
	case Chebyshev:
		return "chebyshev"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Parse resolves a metric by name. Empty names select SquaredEuclidean.
func Parse(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqeuclidean", "squared-euclidean", "squared_euclidean":
		return SquaredEuclidean, nil
	case "euclidean", "l2":
		return Euclidean, nil
	case "manhattan", "cityblock", "l1":
		return Manhattan, nil
	case "chebyshev", "linf":
		return Chebyshev, nil
	}
	return 0, errs.Parameter("unknown distance metric %q", name)
}

// Func returns the unchecked kernel of m. The caller guarantees equal lengths.
func (m Metric) Func() (func(p, c []float64) float64, error) {
	switch m {
	case SquaredEuclidean:
		return squaredEuclidean, nil
	case Euclidean:
		return func(p, c []float64) float64 { return floats.Distance(p, c, 2) }, nil
	case Manhattan:
		return func(p, c []float64) float64 { return floats.Distance(p, c, 1) }, nil
	case Chebyshev:
		return func(p, c []float64) float64 { return floats.Distance(p, c, math.Inf(1)) }, nil
	}
	return nil, errs.Parameter("unknown distance metric %s", m)
}

// Distance compares p and c, failing with errs.ErrInvalidInput on a dimension mismatch.
func (m Metric) Distance(p, c []float64) (float64, error) {
	if len(p) != len(c) {
		return 0, errs.Input("dimension mismatch: %d vs %d", len(p), len(c))
	}
	f, err := m.Func()
	if err != nil {
		return 0, err
	}
	return f(p, c), nil
}

func squaredEuclidean(p, c []float64) float64 {
	var sum float64
	for i, v := range p {
		diff := v - c[i]
		sum += diff * diff
	}
	return sum
}
