package points

import (
	"cmp"
	"math"
	"slices"
	"sync"

	"github.com/yyyoichi/fuzzyc/internal/errs"
	"gonum.org/v1/gonum/mat"
)

// Set is an immutable, ordered collection of fixed-dimension feature vectors.
// Row i of the backing matrix is point i; the index is the identity used to align
// membership rows.
type Set struct {
	data   *mat.Dense
	n, d   int
	orders func() [][]int
}

// MaxMagnitude bounds the absolute value of every feature. Squared differences of
// features within the bound stay finite for any practical dimension.
const MaxMagnitude = 1e100

// New copies vectors into a Set. It fails with errs.ErrInvalidInput when vectors is
// empty, when dimensions differ or when any feature is NaN, infinite or larger in
// magnitude than MaxMagnitude.
func New(vectors [][]float64) (*Set, error) {
	if len(vectors) == 0 {
		return nil, errs.Input("empty point set")
	}
	d := len(vectors[0])
	if d == 0 {
		return nil, errs.Input("point 0 has no features")
	}
	raw := make([]float64, 0, len(vectors)*d)
	for i, v := range vectors {
		if len(v) != d {
			return nil, errs.Input("point %d has dimension %d, want %d", i, len(v), d)
		}
		for j, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, errs.Input("point %d feature %d is not finite: %v", i, j, x)
			}
			if math.Abs(x) > MaxMagnitude {
				return nil, errs.Input("point %d feature %d exceeds magnitude %g: %v", i, j, MaxMagnitude, x)
			}
		}
		raw = append(raw, v...)
	}
	s := &Set{
		data: mat.NewDense(len(vectors), d, raw),
		n:    len(vectors),
		d:    d,
	}
	s.orders = sync.OnceValue(s.sortOrders)
	return s, nil
}

func (s *Set) Len() int { return s.n }

func (s *Set) Dim() int { return s.d }

// At returns a view of point i. The slice aliases the set and must not be modified.
func (s *Set) At(i int) []float64 {
	return s.data.RawRowView(i)
}

// Matrix returns the N×D point matrix. It must be treated as read-only.
func (s *Set) Matrix() mat.Matrix {
	return s.data
}

// Vectors returns a deep copy of the points.
func (s *Set) Vectors() [][]float64 {
	out := make([][]float64, s.n)
	for i := range out {
		out[i] = slices.Clone(s.At(i))
	}
	return out
}

// Order returns the point indices sorted ascending by feature dim. Orders are built
// once per set and shared; callers must not modify them.
func (s *Set) Order(dim int) []int {
	return s.orders()[dim]
}

func (s *Set) sortOrders() [][]int {
	orders := make([][]int, s.d)
	for j := range orders {
		idx := make([]int, s.n)
		for i := range idx {
			idx[i] = i
		}
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(s.data.At(a, j), s.data.At(b, j))
		})
		orders[j] = idx
	}
	return orders
}
