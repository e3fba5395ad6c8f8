package fuzzyc

import (
	"github.com/yyyoichi/fuzzyc/internal/fcm"
	"github.com/yyyoichi/fuzzyc/internal/points"
	"github.com/yyyoichi/fuzzyc/internal/validity"
	"gonum.org/v1/gonum/mat"
)

// Indices holds the partition coefficient (PC) and partition entropy coefficient (PEC).
type Indices = validity.Indices

// Result is the terminal state of one run. The exported fields are a snapshot for
// reporting: changing them does not affect the accessors, which read the run itself and
// return copies.
type Result struct {
	K           int
	Fuzziness   float64
	Metric      Metric
	Aggregation Aggregation
	Iterations  int
	Converged   bool
	// Change is the max absolute membership change of the last iteration.
	Change float64
	// Objective is Σ_i Σ_k u^m · d(i,k). Lower is better among runs that differ only in seed.
	Objective float64
	// Seed reproduces the run when passed to WithSeed.
	Seed int64
	// Reseeded counts empty clusters restarted on a random point during the run.
	Reseeded int

	raw *fcm.Result
}

func newResult(raw *fcm.Result) *Result {
	return &Result{
		K:           raw.Params.K,
		Fuzziness:   raw.Params.M,
		Metric:      raw.Params.Metric,
		Aggregation: raw.Params.Aggregation,
		Iterations:  raw.Iterations,
		Converged:   raw.Converged,
		Change:      raw.Change,
		Objective:   raw.Objective,
		Seed:        raw.Seed,
		Reseeded:    raw.Reseeded,
		raw:         raw,
	}
}

// Experimental reports whether the run used a center update without a convergence proof.
func (r *Result) Experimental() bool {
	return !r.raw.Params.Aggregation.Proven()
}

// Memberships returns the N×K membership matrix; every row sums to 1.
func (r *Result) Memberships() [][]float64 {
	return rows(r.raw.U)
}

// Centers returns the K cluster centers.
func (r *Result) Centers() [][]float64 {
	return rows(r.raw.Centers)
}

// Labels returns the hard label (argmax membership) of every point.
func (r *Result) Labels() []int {
	return r.raw.Labels()
}

// Validity computes PC and PEC of the membership matrix.
func (r *Result) Validity() (Indices, error) {
	return validity.Compute(r.raw.U)
}

// Predict returns the memberships of new points against the fixed centers of r,
// using the run's metric and fuzziness exponent.
func (r *Result) Predict(vectors [][]float64) ([][]float64, error) {
	ps, err := points.New(vectors)
	if err != nil {
		return nil, err
	}
	u, err := fcm.Memberships(ps, r.raw.Centers, r.raw.Params.Metric, r.raw.Params.M)
	if err != nil {
		return nil, err
	}
	return rows(u), nil
}

func rows(m *mat.Dense) [][]float64 {
	n, _ := m.Dims()
	out := make([][]float64, n)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
