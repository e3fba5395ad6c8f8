package kmeans

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/fuzzyc/internal/distance"
	"github.com/yyyoichi/fuzzyc/internal/errs"
	"github.com/yyyoichi/fuzzyc/internal/points"
)

func TestAverageStore(t *testing.T) {
	s := NewAverageStore(2)
	dst := []float64{-1, -1}
	s.Average(dst)
	assert.Equal(t, []float64{-1, -1}, dst)

	s.Add([]float64{1, 2})
	s.Add([]float64{3, 6})
	s.Average(dst)
	assert.Equal(t, []float64{2, 4}, dst)
	assert.Equal(t, 2, s.Count())

	s.Reset()
	assert.Equal(t, 0, s.Count())
	s.Add([]float64{5, 5})
	s.Average(dst)
	assert.Equal(t, []float64{5, 5}, dst)
}

func TestLloyd(t *testing.T) {
	ps, err := points.New([][]float64{
		{0, 0}, {0, 1}, {1, 0},
		{10, 10}, {10, 11}, {11, 10},
	})
	require.NoError(t, err)
	for _, seed := range []int64{0, 1, 5, 123} {
		res, err := Lloyd(t.Context(), ps, 2, 100, distance.SquaredEuclidean, seed)
		require.NoError(t, err)
		assert.True(t, res.Converged)

		l := res.Labels
		assert.Equal(t, []int{l[0], l[0], l[0]}, l[:3])
		assert.Equal(t, []int{l[3], l[3], l[3]}, l[3:])
		assert.NotEqual(t, l[0], l[3])
		assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3}, res.Centers.RawRowView(l[0]), 1e-12)
		assert.InDeltaSlice(t, []float64{31.0 / 3, 31.0 / 3}, res.Centers.RawRowView(l[3]), 1e-12)
		// 2 groups of three points, each with squared distances 2/9, 5/9, 5/9
		assert.InDelta(t, 8.0/3, res.Inertia, 1e-9)
	}
}

func TestLloydErrors(t *testing.T) {
	ps, err := points.New([][]float64{{0}, {1}})
	require.NoError(t, err)

	_, err = Lloyd(t.Context(), nil, 1, 10, distance.Euclidean, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = Lloyd(t.Context(), ps, 3, 10, distance.Euclidean, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
	_, err = Lloyd(t.Context(), ps, 0, 10, distance.Euclidean, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
	_, err = Lloyd(t.Context(), ps, 1, 0, distance.Euclidean, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = Lloyd(ctx, ps, 1, 10, distance.Euclidean, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
