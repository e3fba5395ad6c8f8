package center

import (
	"fmt"
	"math"
	"strings"

	"github.com/yyyoichi/fuzzyc/internal/errs"
	"github.com/yyyoichi/fuzzyc/internal/points"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Aggregation is the closed set of center update rules.
//
// Mean is the closed-form minimiser of the fuzzy objective for fixed memberships, so
// alternating optimisation with Mean never increases the objective (Fuzzy C-Means).
// Median replaces it with a per-dimension weighted median (Fuzzy C-Median). It has no
// monotone-decrease guarantee and its convergence is empirical; Proven reports false.
type Aggregation int

const (
	Mean Aggregation = iota
	Median
)

func (a Aggregation) String() string {
	switch a {
	case Mean:
		return "mean"
	case Median:
		return "median"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// Proven reports whether the update is a proven local-minimiser step.
func (a Aggregation) Proven() bool {
	return a == Mean
}

// Parse resolves an aggregation by name. Empty names select Mean.
func Parse(name string) (Aggregation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mean", "cmeans", "fcm":
		return Mean, nil
	case "median", "cmedian", "fcmd":
		return Median, nil
	}
	return 0, errs.Parameter("unknown center aggregation %q", name)
}

// Valid reports whether a is one of the known variants.
func (a Aggregation) Valid() bool {
	return a == Mean || a == Median
}

// Reseed picks the point index used to restart an empty cluster.
type Reseed func() int

// Weights fills w (N×K) with u^m.
func Weights(u *mat.Dense, m float64, w *mat.Dense) {
	w.Copy(u)
	raw := w.RawMatrix().Data
	if m == 2 {
		floats.Mul(raw, raw)
		return
	}
	for i, v := range raw {
		raw[i] = math.Pow(v, m)
	}
}

// Update recomputes centers (K×D) from the point set and the weights w = u^m (N×K).
// A cluster with no weight is moved onto the point chosen by reseed; the indices of
// such clusters are returned.
func (a Aggregation) Update(ps *points.Set, w *mat.Dense, centers *mat.Dense, reseed Reseed) ([]int, error) {
	n, k := w.Dims()
	if n != ps.Len() {
		return nil, errs.Input("weights have %d rows, point set has %d", n, ps.Len())
	}
	if r, c := centers.Dims(); r != k || c != ps.Dim() {
		return nil, errs.Input("centers are %dx%d, want %dx%d", r, c, k, ps.Dim())
	}
	var reseeded []int
	col := make([]float64, n)
	var scratch medianScratch
	for c := range k {
		mat.Col(col, c, w)
		total := floats.Sum(col)
		row := centers.RawRowView(c)
		if !(total > 0) || math.IsInf(total, 0) {
			copy(row, ps.At(reseed()))
			reseeded = append(reseeded, c)
			continue
		}
		switch a {
		case Mean:
			weightedMean(ps, col, total, row)
		case Median:
			scratch.weightedMedian(ps, col, row)
		default:
			return nil, errs.Parameter("unknown center aggregation %s", a)
		}
	}
	return reseeded, nil
}

// weightedMean accumulates offsets from point 0 so that a cluster of identical points
// lands exactly on that point.
func weightedMean(ps *points.Set, col []float64, total float64, dst []float64) {
	ref := ps.At(0)
	for j := range dst {
		dst[j] = 0
	}
	for i, wi := range col {
		if wi == 0 {
			continue
		}
		p := ps.At(i)
		for j := range dst {
			dst[j] += wi * (p[j] - ref[j])
		}
	}
	for j := range dst {
		dst[j] = ref[j] + dst[j]/total
	}
}

type medianScratch struct {
	xs, ws []float64
}

// weightedMedian takes, per dimension, the lower weighted median: the smallest value
// whose cumulative weight reaches half of the total weight.
func (s *medianScratch) weightedMedian(ps *points.Set, col []float64, dst []float64) {
	n := ps.Len()
	if cap(s.xs) < n {
		s.xs = make([]float64, n)
		s.ws = make([]float64, n)
	}
	xs, ws := s.xs[:n], s.ws[:n]
	for j := range dst {
		for r, i := range ps.Order(j) {
			xs[r] = ps.At(i)[j]
			ws[r] = col[i]
		}
		dst[j] = stat.Quantile(0.5, stat.Empirical, xs, ws)
	}
}
