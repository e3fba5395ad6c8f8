package fuzzyc

import (
	"context"
	"fmt"
	"time"

	"github.com/yyyoichi/fuzzyc/internal/kmeans"
)

// KMeansResult is the outcome of the hard k-means baseline.
type KMeansResult struct {
	Labels     []int
	Centers    [][]float64
	Iterations int
	Converged  bool
	// Seed reproduces the run when passed to WithSeed.
	Seed int64
	// Inertia is the summed distance of every point to its center.
	Inertia float64
}

// KMeans clusters ps into k crisp clusters with Lloyd's algorithm. It shares the
// metric and iteration cap of c. Like Run, it uses c's seed when one is set and
// otherwise draws one from the clock, reported in KMeansResult.Seed.
// It serves as the hard baseline that fuzzy partitions are compared against.
func (c *Cluster) KMeans(ctx context.Context, ps *Points, k int) (*KMeansResult, error) {
	if ps == nil {
		return nil, fmt.Errorf("%w: nil point set", ErrInvalidInput)
	}
	seed := time.Now().UnixNano()
	if c.seed != nil {
		seed = *c.seed
	}
	res, err := kmeans.Lloyd(ctx, ps.set, k, c.maxIterations, c.metric, seed)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Int("k", k).
		Int64("seed", seed).
		Int("iterations", res.Iterations).
		Bool("converged", res.Converged).
		Float64("inertia", res.Inertia).
		Msg("k-means finished")
	return &KMeansResult{
		Labels:     res.Labels,
		Centers:    rows(res.Centers),
		Iterations: res.Iterations,
		Converged:  res.Converged,
		Seed:       seed,
		Inertia:    res.Inertia,
	}, nil
}
