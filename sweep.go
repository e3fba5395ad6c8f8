package fuzzyc

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// SweepResult is the outcome of one candidate cluster count.
// Exactly one of Result and Err is set.
type SweepResult struct {
	K       int
	Result  *Result
	Indices Indices
	Err     error
}

// Observer is notified once per finished sweep candidate, from the goroutine that ran it.
// Implementations must be safe for concurrent use.
type Observer interface {
	Observe(SweepResult)
}

// Sweep runs one fuzzy partition per candidate cluster count with the specified options.
// This is a convenience function that creates a Cluster and calls its Sweep method.
func Sweep(ctx context.Context, ps *Points, ks []int, opts ...Option) ([]SweepResult, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return c.Sweep(ctx, ps, ks), nil
}

// Sweep runs one independent partition per candidate in ks, in parallel, and returns
// the results in the order of ks. A failing candidate (for example k > N) is reported
// in its own SweepResult.Err and does not stop the others. Choosing the best k is left
// to the caller.
func (c *Cluster) Sweep(ctx context.Context, ps *Points, ks []int) []SweepResult {
	results := make([]SweepResult, len(ks))
	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, k := range ks {
		g.Go(func() error {
			results[i] = c.candidate(ctx, ps, k)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	c.logger.Debug().
		Ints("candidates", ks).
		Int("failed", failed).
		Msg("sweep finished")
	return results
}

func (c *Cluster) candidate(ctx context.Context, ps *Points, k int) SweepResult {
	sr := SweepResult{K: k}
	defer func() {
		if c.observer != nil {
			c.observer.Observe(sr)
		}
	}()
	if err := ctx.Err(); err != nil {
		sr.Err = err
		return sr
	}
	res, err := c.Run(ctx, ps, k)
	if err != nil {
		c.logger.Warn().Err(err).Int("k", k).Msg("sweep candidate failed")
		sr.Err = err
		return sr
	}
	idx, err := res.Validity()
	if err != nil {
		sr.Err = err
		return sr
	}
	sr.Result = res
	sr.Indices = idx
	return sr
}
