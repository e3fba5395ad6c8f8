package validity

import (
	"math"

	"github.com/yyyoichi/fuzzyc/internal/errs"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultTolerance bounds the accepted deviation of a row sum from 1.
const DefaultTolerance = 1e-8

// Indices holds the partition validity indices of one membership matrix.
//
// PC lies in [1/K, 1] and PEC in [0, ln K]; PC = 1 and PEC = 0 mean a crisp partition,
// PC = 1/K and PEC = ln K a uniform one. They are only comparable across cluster counts
// on the same point set.
type Indices struct {
	PC  float64 `json:"pc"`
	PEC float64 `json:"pec"`
}

// Check rejects matrices that are empty, hold entries outside [0, 1] or non-finite
// values, or have a row that does not sum to 1 within tol.
func Check(u mat.Matrix, tol float64) error {
	if u == nil {
		return errs.Input("nil membership matrix")
	}
	n, k := u.Dims()
	if n == 0 || k == 0 {
		return errs.Input("empty membership matrix")
	}
	row := make([]float64, k)
	for i := range n {
		mat.Row(row, i, u)
		for c, v := range row {
			if math.IsNaN(v) || v < -tol || v > 1+tol {
				return errs.Input("membership[%d][%d] = %v is outside [0, 1]", i, c, v)
			}
		}
		if sum := floats.Sum(row); math.Abs(sum-1) > tol {
			return errs.Input("membership row %d sums to %v", i, sum)
		}
	}
	return nil
}

// PC is the partition coefficient (1/N) Σ_i Σ_k u².
func PC(u mat.Matrix) (float64, error) {
	if err := Check(u, DefaultTolerance); err != nil {
		return 0, err
	}
	return pc(u), nil
}

// PEC is the partition entropy coefficient -(1/N) Σ_i Σ_k u·ln(u), with 0·ln(0) = 0.
func PEC(u mat.Matrix) (float64, error) {
	if err := Check(u, DefaultTolerance); err != nil {
		return 0, err
	}
	return pec(u), nil
}

// Compute validates u once and returns both indices.
func Compute(u mat.Matrix) (Indices, error) {
	if err := Check(u, DefaultTolerance); err != nil {
		return Indices{}, err
	}
	return Indices{PC: pc(u), PEC: pec(u)}, nil
}

func pc(u mat.Matrix) float64 {
	n, k := u.Dims()
	row := make([]float64, k)
	var sum float64
	for i := range n {
		mat.Row(row, i, u)
		sum += floats.Dot(row, row)
	}
	return sum / float64(n)
}

func pec(u mat.Matrix) float64 {
	n, k := u.Dims()
	row := make([]float64, k)
	var sum float64
	for i := range n {
		mat.Row(row, i, u)
		for _, v := range row {
			if v > 0 {
				sum += v * math.Log(v)
			}
		}
	}
	if sum == 0 {
		return 0
	}
	return -sum / float64(n)
}
