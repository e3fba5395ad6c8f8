package fuzzyc_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/fuzzyc"
)

func twoGroups(t testing.TB) *fuzzyc.Points {
	t.Helper()
	ps, err := fuzzyc.NewPoints([][]float64{{0, 0}, {0, 1}, {10, 10}, {10, 11}})
	require.NoError(t, err)
	return ps
}

func TestNewOptions(t *testing.T) {
	test := []struct {
		name string
		opt  fuzzyc.Option
		ok   bool
	}{
		{"fuzziness", fuzzyc.WithFuzziness(1.5), true},
		{"fuzziness_one", fuzzyc.WithFuzziness(1), false},
		{"fuzziness_nan", fuzzyc.WithFuzziness(math.NaN()), false},
		{"tolerance", fuzzyc.WithTolerance(1e-9), true},
		{"tolerance_negative", fuzzyc.WithTolerance(-1), false},
		{"iterations", fuzzyc.WithMaxIterations(10), true},
		{"iterations_zero", fuzzyc.WithMaxIterations(0), false},
		{"metric", fuzzyc.WithMetric(fuzzyc.Manhattan), true},
		{"metric_unknown", fuzzyc.WithMetric(fuzzyc.Metric(99)), false},
		{"aggregation", fuzzyc.WithAggregation(fuzzyc.Median), true},
		{"aggregation_unknown", fuzzyc.WithAggregation(fuzzyc.Aggregation(99)), false},
		{"workers", fuzzyc.WithWorkers(2), true},
		{"workers_zero", fuzzyc.WithWorkers(0), false},
		{"seed", fuzzyc.WithSeed(-3), true},
		{"logger", fuzzyc.WithLogger(zerolog.Nop()), true},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fuzzyc.New(tt.opt)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, fuzzyc.ErrInvalidParameter)
			}
		})
	}
}

func TestNewPoints(t *testing.T) {
	src := [][]float64{{1, 2}, {3, 4}}
	ps, err := fuzzyc.NewPoints(src)
	require.NoError(t, err)
	src[0][0] = 100
	assert.Equal(t, 2, ps.Len())
	assert.Equal(t, 2, ps.Dim())
	assert.Equal(t, []float64{1, 2}, ps.At(0))

	at := ps.At(1)
	at[0] = -1
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, ps.Vectors())

	for _, vectors := range [][][]float64{
		nil,
		{{1, 2}, {3}},
		{{}, {}},
		{{math.Inf(-1)}},
		{{-1e200}, {-0.9e200}, {0.9e200}, {1e200}, {0}},
	} {
		_, err := fuzzyc.NewPoints(vectors)
		assert.ErrorIs(t, err, fuzzyc.ErrInvalidInput)
	}
}

func TestRun(t *testing.T) {
	ps := twoGroups(t)
	res, err := fuzzyc.Run(t.Context(), ps, 2, fuzzyc.WithSeed(5))
	require.NoError(t, err)

	assert.Equal(t, 2, res.K)
	assert.Equal(t, 2.0, res.Fuzziness)
	assert.Equal(t, fuzzyc.SquaredEuclidean, res.Metric)
	assert.Equal(t, fuzzyc.Mean, res.Aggregation)
	assert.Equal(t, int64(5), res.Seed)
	assert.True(t, res.Converged)
	assert.False(t, res.Experimental())
	assert.LessOrEqual(t, res.Change, 1e-6)

	u := res.Memberships()
	require.Len(t, u, 4)
	for _, row := range u {
		require.Len(t, row, 2)
		assert.InDelta(t, 1, row[0]+row[1], 1e-9)
	}
	// accessors hand out copies
	u[0][0] = 42
	assert.NotEqual(t, 42.0, res.Memberships()[0][0])

	labels := res.Labels()
	centers := res.Centers()
	assert.InDeltaSlice(t, []float64{0, 0.5}, centers[labels[0]], 1e-3)
	assert.InDeltaSlice(t, []float64{10, 10.5}, centers[labels[3]], 1e-3)

	idx, err := res.Validity()
	require.NoError(t, err)
	assert.Greater(t, idx.PC, 0.9)
	assert.Less(t, idx.PEC, 0.2)
}

func TestRunLargeMagnitudes(t *testing.T) {
	vectors := [][]float64{{-1}, {-0.9}, {0.9}, {1}, {0}}
	for _, v := range vectors {
		v[0] *= fuzzyc.MaxMagnitude
	}
	ps, err := fuzzyc.NewPoints(vectors)
	require.NoError(t, err)
	for s := range int64(5) {
		res, err := fuzzyc.Run(t.Context(), ps, 2, fuzzyc.WithSeed(s))
		require.NoError(t, err)
		for _, row := range res.Memberships() {
			assert.InDelta(t, 1, row[0]+row[1], 1e-9)
		}
		_, err = res.Validity()
		assert.NoError(t, err)
	}
}

func TestRunWithoutSeedRecordsOne(t *testing.T) {
	ps := twoGroups(t)
	a, err := fuzzyc.Run(t.Context(), ps, 2)
	require.NoError(t, err)

	b, err := fuzzyc.Run(t.Context(), ps, 2, fuzzyc.WithSeed(a.Seed))
	require.NoError(t, err)
	assert.Equal(t, a.Memberships(), b.Memberships())
	assert.Equal(t, a.Centers(), b.Centers())
}

func TestRunMedians(t *testing.T) {
	ps := twoGroups(t)
	res, err := fuzzyc.Run(t.Context(), ps, 2, fuzzyc.WithSeed(5), fuzzyc.WithMedians())
	require.NoError(t, err)
	assert.True(t, res.Experimental())
	assert.Equal(t, fuzzyc.Median, res.Aggregation)

	for _, row := range res.Memberships() {
		assert.InDelta(t, 1, row[0]+row[1], 1e-9)
	}
	// every coordinate of a lower weighted median is a coordinate of some point
	for _, c := range res.Centers() {
		assert.Contains(t, []float64{0, 10}, c[0])
		assert.Contains(t, []float64{0, 1, 10, 11}, c[1])
	}
}

func TestRunErrors(t *testing.T) {
	ps := twoGroups(t)
	test := []struct {
		name string
		ps   *fuzzyc.Points
		k    int
		opts []fuzzyc.Option
		err  error
	}{
		{"k_one", ps, 1, nil, fuzzyc.ErrInvalidParameter},
		{"k_above_n", ps, 5, nil, fuzzyc.ErrInvalidParameter},
		{"bad_option", ps, 2, []fuzzyc.Option{fuzzyc.WithFuzziness(0.5)}, fuzzyc.ErrInvalidParameter},
		{"nil_points", nil, 2, nil, fuzzyc.ErrInvalidInput},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			res, err := fuzzyc.Run(t.Context(), tt.ps, tt.k, tt.opts...)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, res)
		})
	}
}

func TestRunLogsNonConvergence(t *testing.T) {
	var buf bytes.Buffer
	c, err := fuzzyc.New(
		fuzzyc.WithSeed(1),
		fuzzyc.WithMaxIterations(1),
		fuzzyc.WithLogger(zerolog.New(&buf)),
	)
	require.NoError(t, err)

	res, err := c.Run(t.Context(), twoGroups(t), 2)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestPredict(t *testing.T) {
	res, err := fuzzyc.Run(t.Context(), twoGroups(t), 2, fuzzyc.WithSeed(3))
	require.NoError(t, err)
	labels := res.Labels()

	u, err := res.Predict([][]float64{{0.2, 0.4}, {9, 12}})
	require.NoError(t, err)
	require.Len(t, u, 2)
	assert.Greater(t, u[0][labels[0]], 0.99)
	assert.Greater(t, u[1][labels[3]], 0.95)

	_, err = res.Predict([][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, fuzzyc.ErrInvalidInput)
	_, err = res.Predict(nil)
	assert.ErrorIs(t, err, fuzzyc.ErrInvalidInput)
}

func TestKMeans(t *testing.T) {
	c, err := fuzzyc.New(fuzzyc.WithSeed(2))
	require.NoError(t, err)
	res, err := c.KMeans(t.Context(), twoGroups(t), 2)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, res.Labels[0], res.Labels[1])
	assert.NotEqual(t, res.Labels[0], res.Labels[2])
	assert.Equal(t, []float64{0, 0.5}, res.Centers[res.Labels[0]])
	assert.Equal(t, []float64{10, 10.5}, res.Centers[res.Labels[2]])
	assert.InDelta(t, 1.0, res.Inertia, 1e-12)
	assert.Equal(t, int64(2), res.Seed)

	_, err = c.KMeans(t.Context(), nil, 2)
	assert.ErrorIs(t, err, fuzzyc.ErrInvalidInput)
}

func TestKMeansWithoutSeedRecordsOne(t *testing.T) {
	ps, err := fuzzyc.NewPoints([][]float64{{0}, {1}, {2}, {6}, {7}, {8}, {20}, {21}})
	require.NoError(t, err)
	c, err := fuzzyc.New()
	require.NoError(t, err)
	first, err := c.KMeans(t.Context(), ps, 3)
	require.NoError(t, err)

	replay, err := fuzzyc.New(fuzzyc.WithSeed(first.Seed))
	require.NoError(t, err)
	second, err := replay.KMeans(t.Context(), ps, 3)
	require.NoError(t, err)
	assert.Equal(t, first.Seed, second.Seed)
	assert.Equal(t, first.Labels, second.Labels)
	assert.Equal(t, first.Centers, second.Centers)
	assert.Equal(t, first.Inertia, second.Inertia)
}

func TestResultFieldsAreDetached(t *testing.T) {
	res, err := fuzzyc.Run(t.Context(), twoGroups(t), 2, fuzzyc.WithSeed(5))
	require.NoError(t, err)
	want, err := res.Predict([][]float64{{1, 1}, {9, 9}})
	require.NoError(t, err)

	res.Metric = fuzzyc.Chebyshev
	res.Fuzziness = 3
	res.Aggregation = fuzzyc.Median
	res.K = 7

	got, err := res.Predict([][]float64{{1, 1}, {9, 9}})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.False(t, res.Experimental())
	assert.Len(t, res.Centers(), 2)
}

func TestParse(t *testing.T) {
	m, err := fuzzyc.ParseMetric("manhattan")
	require.NoError(t, err)
	assert.Equal(t, fuzzyc.Manhattan, m)
	_, err = fuzzyc.ParseMetric("cosine")
	assert.ErrorIs(t, err, fuzzyc.ErrInvalidParameter)

	a, err := fuzzyc.ParseAggregation("median")
	require.NoError(t, err)
	assert.Equal(t, fuzzyc.Median, a)
}
