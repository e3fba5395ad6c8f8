package fuzzyc

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/yyyoichi/fuzzyc/internal/center"
	"github.com/yyyoichi/fuzzyc/internal/distance"
	"github.com/yyyoichi/fuzzyc/internal/errs"
	"github.com/yyyoichi/fuzzyc/internal/fcm"
)

var (
	// ErrInvalidInput is returned for malformed data: an empty point set, mismatched
	// dimensions, non-finite features or a membership matrix that is not row-stochastic.
	ErrInvalidInput = errs.ErrInvalidInput
	// ErrInvalidParameter is returned for configuration outside its valid domain:
	// a cluster count < 2 or > N, a fuzziness exponent <= 1, a non-positive tolerance
	// or iteration cap.
	ErrInvalidParameter = errs.ErrInvalidParameter
)

type (
	// Metric selects the distance between a point and a center.
	Metric = distance.Metric
	// Aggregation selects how a cluster center is computed from weighted members.
	Aggregation = center.Aggregation
)

const (
	SquaredEuclidean = distance.SquaredEuclidean
	Euclidean        = distance.Euclidean
	Manhattan        = distance.Manhattan
	Chebyshev        = distance.Chebyshev

	// Mean is the Fuzzy C-Means center update.
	Mean = center.Mean
	// Median is the experimental Fuzzy C-Median center update. Its convergence is
	// empirical only.
	Median = center.Median
)

// ParseMetric resolves a metric by name ("sqeuclidean", "euclidean", "manhattan", "chebyshev").
func ParseMetric(name string) (Metric, error) { return distance.Parse(name) }

// ParseAggregation resolves an aggregation by name ("mean", "median").
func ParseAggregation(name string) (Aggregation, error) { return center.Parse(name) }

// Cluster holds the configuration shared by every run it performs.
// A Cluster is safe for concurrent use.
type Cluster struct {
	m             float64
	tolerance     float64
	maxIterations int
	seed          *int64
	metric        Metric
	aggregation   Aggregation
	workers       int
	logger        zerolog.Logger
	observer      Observer
}

// New initializes a clustering configuration.
// For default values, refer to the init method.
func New(opts ...Option) (*Cluster, error) {
	c := new(Cluster)
	if err := c.init(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// Run clusters ps into k fuzzy clusters with the specified options.
// This is a convenience function that creates a Cluster and calls its Run method.
func Run(ctx context.Context, ps *Points, k int, opts ...Option) (*Result, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, ps, k)
}

// Run performs one fuzzy partition of ps into k clusters.
//
// Process:
//  1. Draws k distinct points as initial centers (seeded) and derives initial memberships.
//  2. Alternates center and membership updates.
//  3. Stops when no membership moves more than the tolerance, or at the iteration cap.
//
// Hitting the cap is reported through Result.Converged, not as an error.
func (c *Cluster) Run(ctx context.Context, ps *Points, k int) (*Result, error) {
	if ps == nil {
		return nil, fmt.Errorf("%w: nil point set", ErrInvalidInput)
	}
	raw, err := fcm.Run(ctx, ps.set, c.params(k), c.logger)
	if err != nil {
		return nil, err
	}
	return newResult(raw), nil
}

func (c *Cluster) params(k int) fcm.Params {
	return fcm.Params{
		K:             k,
		M:             c.m,
		Tolerance:     c.tolerance,
		MaxIterations: c.maxIterations,
		Metric:        c.metric,
		Aggregation:   c.aggregation,
		Seed:          c.seed,
	}
}

func (c *Cluster) init(opts ...Option) error {
	c.m = 2
	c.tolerance = 1e-6
	c.maxIterations = 100
	c.metric = SquaredEuclidean
	c.aggregation = Mean
	c.workers = runtime.GOMAXPROCS(0)
	c.logger = zerolog.Nop()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}
