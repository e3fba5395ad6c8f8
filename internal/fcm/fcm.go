package fcm

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/yyyoichi/fuzzyc/internal/center"
	"github.com/yyyoichi/fuzzyc/internal/distance"
	"github.com/yyyoichi/fuzzyc/internal/errs"
	"github.com/yyyoichi/fuzzyc/internal/points"
	"github.com/yyyoichi/fuzzyc/internal/validity"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rowTolerance is the slack allowed on membership row sums.
const rowTolerance = 1e-9

// Params configures one optimisation run.
type Params struct {
	K             int
	M             float64 // fuzziness exponent, > 1
	Tolerance     float64 // max absolute membership change accepted as converged
	MaxIterations int
	Metric        distance.Metric
	Aggregation   center.Aggregation
	// Seed fixes the initialisation. A nil seed is drawn from the clock and reported
	// in Result.Seed.
	Seed *int64
}

// Validate checks p against a point set of n points.
func (p Params) Validate(n int) error {
	if p.K < 2 {
		return errs.Parameter("cluster count %d < 2", p.K)
	}
	if p.K > n {
		return errs.Parameter("cluster count %d exceeds %d points", p.K, n)
	}
	if !(p.M > 1) || math.IsInf(p.M, 0) {
		return errs.Parameter("fuzziness exponent %v must be a finite value > 1", p.M)
	}
	if !(p.Tolerance > 0) {
		return errs.Parameter("tolerance %v must be > 0", p.Tolerance)
	}
	if p.MaxIterations < 1 {
		return errs.Parameter("max iterations %d < 1", p.MaxIterations)
	}
	if !p.Aggregation.Valid() {
		return errs.Parameter("unknown center aggregation %s", p.Aggregation)
	}
	return nil
}

// Result is the terminal state of one run. It is not modified after Run returns.
type Result struct {
	U          *mat.Dense // N×K memberships, rows sum to 1
	Centers    *mat.Dense // K×D
	Iterations int
	Converged  bool
	Change     float64 // max absolute membership change of the last iteration
	Objective  float64 // Σ_i Σ_k u^m · d(i,k)
	Seed       int64
	Reseeded   int // empty clusters restarted during the run
	Params     Params
}

// Labels returns the argmax cluster of every point, preferring the lowest index on ties.
func (r *Result) Labels() []int {
	n, _ := r.U.Dims()
	labels := make([]int, n)
	for i := range labels {
		labels[i] = floats.MaxIdx(r.U.RawRowView(i))
	}
	return labels
}

// Run performs alternating optimisation of memberships and centers.
//
// Initialisation: K distinct points are drawn with rand.New(rand.NewSource(seed)).Perm
// and used as centers; the initial memberships follow from the membership step. The same
// seed therefore reproduces the run bit for bit.
//
// Each iteration:
//  1. Recomputes centers from the current memberships with the aggregation.
//  2. Recomputes memberships from the centers.
//  3. Measures the max absolute change of any membership.
//
// The run stops with Converged when the change is <= Tolerance, or without it after
// MaxIterations; the latter is not an error. A membership matrix that is not
// row-stochastic is never returned: Run fails with errs.ErrInvalidInput instead.
func Run(ctx context.Context, ps *points.Set, p Params, logger zerolog.Logger) (*Result, error) {
	if ps == nil {
		return nil, errs.Input("nil point set")
	}
	if err := p.Validate(ps.Len()); err != nil {
		return nil, err
	}
	dist, err := p.Metric.Func()
	if err != nil {
		return nil, err
	}
	var seed int64
	if p.Seed != nil {
		seed = *p.Seed
	} else {
		seed = time.Now().UnixNano()
	}
	var (
		n, k, d  = ps.Len(), p.K, ps.Dim()
		rd       = rand.New(rand.NewSource(seed))
		centers  = mat.NewDense(k, d, nil)
		u        = mat.NewDense(n, k, nil)
		prev     = mat.NewDense(n, k, nil)
		w        = mat.NewDense(n, k, nil)
		exponent = 1 / (p.M - 1)
		scratch  = make([]float64, k)
	)
	for c, i := range rd.Perm(n)[:k] {
		centers.SetRow(c, ps.At(i))
	}
	updateMemberships(ps, centers, u, dist, exponent, scratch)

	logger = logger.With().
		Int("k", k).
		Float64("m", p.M).
		Str("aggregation", p.Aggregation.String()).
		Str("metric", p.Metric.String()).
		Int64("seed", seed).
		Logger()

	reseed := func() int { return rd.Intn(n) }
	res := &Result{Seed: seed, Params: p}
	for res.Iterations < p.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Iterations++
		prev.Copy(u)

		center.Weights(u, p.M, w)
		reseeded, err := p.Aggregation.Update(ps, w, centers, reseed)
		if err != nil {
			return nil, err
		}
		if len(reseeded) > 0 {
			res.Reseeded += len(reseeded)
			logger.Warn().
				Ints("clusters", reseeded).
				Int("iteration", res.Iterations).
				Msg("empty clusters reseeded")
		}
		updateMemberships(ps, centers, u, dist, exponent, scratch)

		res.Change = floats.Distance(u.RawMatrix().Data, prev.RawMatrix().Data, math.Inf(1))
		logger.Trace().
			Int("iteration", res.Iterations).
			Float64("change", res.Change).
			Msg("partition step")
		if res.Change <= p.Tolerance {
			res.Converged = true
			break
		}
	}

	if err := validity.Check(u, rowTolerance); err != nil {
		logger.Error().Err(err).Int("iterations", res.Iterations).Msg("degenerate membership matrix")
		return nil, fmt.Errorf("fuzzy partition: %w", err)
	}
	center.Weights(u, p.M, w)
	res.U = u
	res.Centers = centers
	res.Objective = objective(ps, centers, w, dist)

	ev := logger.Debug()
	if !res.Converged {
		ev = logger.Warn()
	}
	ev.Int("iterations", res.Iterations).
		Bool("converged", res.Converged).
		Float64("change", res.Change).
		Float64("objective", res.Objective).
		Msg("fuzzy partition finished")
	return res, nil
}

// Memberships computes the membership matrix of ps against fixed centers.
func Memberships(ps *points.Set, centers *mat.Dense, metric distance.Metric, m float64) (*mat.Dense, error) {
	if !(m > 1) || math.IsInf(m, 0) {
		return nil, errs.Parameter("fuzziness exponent %v must be a finite value > 1", m)
	}
	k, d := centers.Dims()
	if d != ps.Dim() {
		return nil, errs.Input("points have dimension %d, centers %d", ps.Dim(), d)
	}
	dist, err := metric.Func()
	if err != nil {
		return nil, err
	}
	u := mat.NewDense(ps.Len(), k, nil)
	updateMemberships(ps, centers, u, dist, 1/(m-1), make([]float64, k))
	if err := validity.Check(u, rowTolerance); err != nil {
		return nil, fmt.Errorf("fuzzy memberships: %w", err)
	}
	return u, nil
}

// updateMemberships applies u[i][k] = 1 / Σ_j (d(i,k)/d(i,j))^(1/(m-1)).
//
// The row is evaluated as (d_min/d(i,k))^(1/(m-1)) normalised to sum 1, which is the
// same quantity but stays within [0, 1] before normalisation for any exponent. Points
// lying exactly on z centers split their membership equally among those z clusters.
func updateMemberships(ps *points.Set, centers, u *mat.Dense, dist func(p, c []float64) float64, exponent float64, dists []float64) {
	k, _ := centers.Dims()
	for i := range ps.Len() {
		p := ps.At(i)
		row := u.RawRowView(i)
		zeros := 0
		for c := range k {
			dists[c] = dist(p, centers.RawRowView(c))
			if dists[c] == 0 {
				zeros++
			}
		}
		if zeros > 0 {
			share := 1 / float64(zeros)
			for c := range k {
				if dists[c] == 0 {
					row[c] = share
				} else {
					row[c] = 0
				}
			}
			continue
		}
		dmin := floats.Min(dists)
		for c := range k {
			ratio := dmin / dists[c]
			if exponent != 1 {
				ratio = math.Pow(ratio, exponent)
			}
			row[c] = ratio
		}
		floats.Scale(1/floats.Sum(row), row)
	}
}

func objective(ps *points.Set, centers, w *mat.Dense, dist func(p, c []float64) float64) float64 {
	k, _ := centers.Dims()
	var j float64
	for i := range ps.Len() {
		p := ps.At(i)
		wrow := w.RawRowView(i)
		for c := range k {
			if wrow[c] == 0 {
				continue
			}
			j += wrow[c] * dist(p, centers.RawRowView(c))
		}
	}
	return j
}
