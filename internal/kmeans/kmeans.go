package kmeans

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/yyyoichi/fuzzyc/internal/distance"
	"github.com/yyyoichi/fuzzyc/internal/errs"
	"github.com/yyyoichi/fuzzyc/internal/points"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Result is the outcome of a hard k-means run.
type Result struct {
	Labels     []int
	Centers    *mat.Dense
	Iterations int
	Converged  bool
	Inertia    float64 // Σ_i d(i, center(label_i))
}

// Lloyd performs hard k-means clustering of ps into k clusters.
//
// Centers start on k distinct points drawn with the seed. Each iteration assigns every
// point to its nearest center and moves each center to the mean of its points. It stops
// when no assignment changes, when no center moves more than 1e-6, or after maxIter
// iterations. An empty cluster is restarted on a random point.
func Lloyd(ctx context.Context, ps *points.Set, k, maxIter int, metric distance.Metric, seed int64) (*Result, error) {
	if ps == nil {
		return nil, errs.Input("nil point set")
	}
	if k < 1 || k > ps.Len() {
		return nil, errs.Parameter("cluster count %d outside [1, %d]", k, ps.Len())
	}
	if maxIter < 1 {
		return nil, errs.Parameter("max iterations %d < 1", maxIter)
	}
	dist, err := metric.Func()
	if err != nil {
		return nil, err
	}
	var (
		n, d    = ps.Len(), ps.Dim()
		rd      = rand.New(rand.NewSource(seed))
		centers = mat.NewDense(k, d, nil)
		prev    = mat.NewDense(k, d, nil)
		labels  = make([]int, n)
		stores  = make([]*AverageStore, k)
	)
	for c, i := range rd.Perm(n)[:k] {
		centers.SetRow(c, ps.At(i))
		stores[c] = NewAverageStore(d)
	}
	for i := range labels {
		labels[i] = -1
	}

	etol := math.Pow10(-6)
	res := &Result{Labels: labels, Centers: centers}
	for res.Iterations < maxIter {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Iterations++
		changed := assign(ps, centers, labels, dist)
		if !changed {
			res.Converged = true
			break
		}

		prev.Copy(centers)
		for _, s := range stores {
			s.Reset()
		}
		for i, l := range labels {
			stores[l].Add(ps.At(i))
		}
		for c, s := range stores {
			if s.Count() == 0 {
				centers.SetRow(c, ps.At(rd.Intn(n)))
				continue
			}
			s.Average(centers.RawRowView(c))
		}
		if floats.Distance(centers.RawMatrix().Data, prev.RawMatrix().Data, math.Inf(1)) < etol {
			assign(ps, centers, labels, dist)
			res.Converged = true
			break
		}
	}
	for i, l := range labels {
		res.Inertia += dist(ps.At(i), centers.RawRowView(l))
	}
	return res, nil
}

// assign labels every point with its nearest center, splitting the points across
// GOMAXPROCS goroutines. It reports whether any label changed.
func assign(ps *points.Set, centers *mat.Dense, labels []int, dist func(p, c []float64) float64) bool {
	var (
		n       = ps.Len()
		k, _    = centers.Dims()
		workers = min(runtime.GOMAXPROCS(0), n)
		chunk   = (n + workers - 1) / workers
		changed = make([]bool, workers)
		wg      sync.WaitGroup
	)
	wg.Add(workers)
	for w := range workers {
		go func(w int) {
			defer wg.Done()
			for i := w * chunk; i < min((w+1)*chunk, n); i++ {
				p := ps.At(i)
				best, bestDist := 0, math.Inf(1)
				for c := range k {
					if dd := dist(p, centers.RawRowView(c)); dd < bestDist {
						best, bestDist = c, dd
					}
				}
				if labels[i] != best {
					labels[i] = best
					changed[w] = true
				}
			}
		}(w)
	}
	wg.Wait()
	for _, c := range changed {
		if c {
			return true
		}
	}
	return false
}
