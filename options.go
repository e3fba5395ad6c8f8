package fuzzyc

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/yyyoichi/fuzzyc/internal/errs"
)

type Option func(*Cluster) error

// WithFuzziness sets the fuzziness exponent m. m must be greater than 1; values close
// to 1 approach hard clustering and larger values blend clusters more.
// The default is 2.
func WithFuzziness(m float64) Option {
	return func(c *Cluster) error {
		if !(m > 1) || math.IsInf(m, 0) {
			return errs.Parameter("fuzziness exponent %v must be a finite value > 1", m)
		}
		c.m = m
		return nil
	}
}

// WithTolerance sets the convergence tolerance on the max absolute membership change
// between iterations. The default is 1e-6.
func WithTolerance(eps float64) Option {
	return func(c *Cluster) error {
		if !(eps > 0) {
			return errs.Parameter("tolerance %v must be > 0", eps)
		}
		c.tolerance = eps
		return nil
	}
}

// WithMaxIterations caps the number of iterations of a run. The default is 100.
func WithMaxIterations(n int) Option {
	return func(c *Cluster) error {
		if n < 1 {
			return errs.Parameter("max iterations %d < 1", n)
		}
		c.maxIterations = n
		return nil
	}
}

// WithSeed fixes the random initialization so that repeated runs with the same
// parameters produce identical memberships and centers.
// Without a seed, each run draws one from the clock and reports it in Result.Seed.
func WithSeed(seed int64) Option {
	return func(c *Cluster) error {
		c.seed = &seed
		return nil
	}
}

// WithMetric selects the distance metric. The default is SquaredEuclidean.
func WithMetric(m Metric) Option {
	return func(c *Cluster) error {
		if _, err := m.Func(); err != nil {
			return err
		}
		c.metric = m
		return nil
	}
}

// WithMeans selects the weighted-mean center update (Fuzzy C-Means). This is the default.
func WithMeans() Option {
	return func(c *Cluster) error {
		c.aggregation = Mean
		return nil
	}
}

// WithMedians selects the weighted-median center update (Fuzzy C-Median).
// It is experimental: the objective is not guaranteed to decrease monotonically, so
// convergence is observed rather than proven. Results report Experimental() == true.
func WithMedians() Option {
	return func(c *Cluster) error {
		c.aggregation = Median
		return nil
	}
}

// WithAggregation selects the center update by value.
func WithAggregation(a Aggregation) Option {
	return func(c *Cluster) error {
		if !a.Valid() {
			return errs.Parameter("unknown center aggregation %s", a)
		}
		c.aggregation = a
		return nil
	}
}

// WithWorkers limits how many sweep candidates run in parallel.
// The default is runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(c *Cluster) error {
		if n < 1 {
			return errs.Parameter("workers %d < 1", n)
		}
		c.workers = n
		return nil
	}
}

// WithLogger routes run diagnostics to logger. Completed runs log at debug level,
// every iteration at trace level, and non-converged runs and reseeded clusters at
// warn level. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cluster) error {
		c.logger = logger
		return nil
	}
}

// WithObserver registers an observer notified once per finished sweep candidate.
func WithObserver(o Observer) Option {
	return func(c *Cluster) error {
		c.observer = o
		return nil
	}
}
