package fuzzyc

import (
	"slices"

	"github.com/yyyoichi/fuzzyc/internal/points"
)

// MaxMagnitude is the largest absolute feature value NewPoints accepts.
const MaxMagnitude = points.MaxMagnitude

// Points is an immutable set of equal-dimension feature vectors.
// The same Points can be clustered any number of times, concurrently.
type Points struct {
	set *points.Set
}

// NewPoints copies vectors into a Points. It fails with ErrInvalidInput when vectors is
// empty, when dimensions differ or when a feature is NaN, infinite or larger in magnitude
// than MaxMagnitude.
func NewPoints(vectors [][]float64) (*Points, error) {
	s, err := points.New(vectors)
	if err != nil {
		return nil, err
	}
	return &Points{set: s}, nil
}

// Len returns the number of points.
func (p *Points) Len() int { return p.set.Len() }

// Dim returns the number of features per point.
func (p *Points) Dim() int { return p.set.Dim() }

// At returns a copy of point i.
func (p *Points) At(i int) []float64 { return slices.Clone(p.set.At(i)) }

// Vectors returns a copy of all points.
func (p *Points) Vectors() [][]float64 { return p.set.Vectors() }
