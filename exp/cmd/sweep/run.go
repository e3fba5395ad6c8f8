package main

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"exp/internal/chart"
	"exp/internal/config"
	"exp/internal/db"
	"exp/internal/metrics"
	"exp/internal/shuffle"
	"exp/internal/weblog"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/rs/zerolog/log"
	"github.com/yyyoichi/fuzzyc"
)

// heatmapRows caps the membership heatmap; larger samples only show their head.
const heatmapRows = 200

// runSweep loads the weblog, sweeps every configured K, persists the candidates and
// renders the charts. Metrics are recorded into prom when it is non-nil.
// It returns the path of the rendered chart page.
func runSweep(ctx context.Context, cfg config.Config, prom *metrics.Prometheus) (string, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return "", err
	}
	records, _, err := weblog.NewLoader(cfg.Input.CacheDir, timeout).Load(cfg.Input.Source)
	if err != nil {
		return "", err
	}
	records = shuffle.Sample(records, cfg.Input.Sample, cfg.Input.Seed)
	vectors := weblog.Vectors(records)
	if cfg.Cluster.Scale {
		minMaxScale(vectors)
	}
	ps, err := fuzzyc.NewPoints(vectors)
	if err != nil {
		return "", err
	}
	log.Info().Int("points", ps.Len()).Ints("k", cfg.Sweep.K).Msg("Starting sweep")

	opts, err := cfg.Options()
	if err != nil {
		return "", err
	}
	opts = append(opts, fuzzyc.WithLogger(log.Logger))
	if prom != nil {
		opts = append(opts, fuzzyc.WithObserver(prom))
	}
	c, err := fuzzyc.New(opts...)
	if err != nil {
		return "", err
	}
	results := c.Sweep(ctx, ps, cfg.Sweep.K)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	candidates := make([]*db.Candidate, len(results))
	for i, r := range results {
		candidates[i] = toCandidate(r)
		if r.Err != nil || !cfg.Sweep.Baseline {
			continue
		}
		km, err := c.KMeans(ctx, ps, r.K)
		if err != nil {
			log.Warn().Err(err).Int("k", r.K).Msg("k-means baseline failed")
			continue
		}
		candidates[i].KMeansInertia = sql.NullFloat64{Float64: km.Inertia, Valid: true}
	}

	sweepID, err := persist(ctx, cfg, ps, candidates)
	if err != nil {
		return "", err
	}

	best, ok := bestCandidate(results)
	if !ok {
		return "", fmt.Errorf("every candidate failed")
	}
	log.Info().
		Int64("sweep", sweepID).
		Int("k", best.K).
		Float64("pc", best.Indices.PC).
		Float64("pec", best.Indices.PEC).
		Bool("experimental", best.Result.Experimental()).
		Msg("Best candidate by PC")

	page := filepath.Join(cfg.Output.Charts, fmt.Sprintf("sweep_%d.html", sweepID))
	if err := renderCharts(page, ps, results, best); err != nil {
		return "", err
	}
	log.Info().Str("path", page).Msg("Generated charts")
	return page, nil
}

func toCandidate(r fuzzyc.SweepResult) *db.Candidate {
	if r.Err != nil {
		return &db.Candidate{K: r.K, Error: r.Err.Error()}
	}
	return &db.Candidate{
		K:          r.K,
		PC:         sql.NullFloat64{Float64: r.Indices.PC, Valid: true},
		PEC:        sql.NullFloat64{Float64: r.Indices.PEC, Valid: true},
		Iterations: r.Result.Iterations,
		Converged:  r.Result.Converged,
		Objective:  sql.NullFloat64{Float64: r.Result.Objective, Valid: true},
		Seed:       r.Result.Seed,
		Reseeded:   r.Result.Reseeded,
		Centers:    r.Result.Centers(),
	}
}

// bestCandidate picks the highest PC, breaking ties by the lower PEC and then the lower K.
func bestCandidate(results []fuzzyc.SweepResult) (fuzzyc.SweepResult, bool) {
	ok := slices.DeleteFunc(slices.Clone(results), func(r fuzzyc.SweepResult) bool { return r.Err != nil })
	if len(ok) == 0 {
		return fuzzyc.SweepResult{}, false
	}
	return slices.MinFunc(ok, func(a, b fuzzyc.SweepResult) int {
		return cmp.Or(
			cmp.Compare(b.Indices.PC, a.Indices.PC),
			cmp.Compare(a.Indices.PEC, b.Indices.PEC),
			cmp.Compare(a.K, b.K),
		)
	}), true
}

func persist(ctx context.Context, cfg config.Config, ps *fuzzyc.Points, candidates []*db.Candidate) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Output.DB), 0755); err != nil {
		return 0, fmt.Errorf("failed to create database directory: %w", err)
	}
	database, err := db.Open(cfg.Output.DB)
	if err != nil {
		return 0, err
	}
	defer database.Close()

	return database.InsertSweep(ctx, &db.Sweep{
		Source:        cfg.Input.Source,
		Points:        ps.Len(),
		Dim:           ps.Dim(),
		Scaled:        cfg.Cluster.Scale,
		Fuzziness:     cfg.Cluster.Fuzziness,
		Tolerance:     cfg.Cluster.Tolerance,
		MaxIterations: cfg.Cluster.MaxIterations,
		Metric:        cfg.Cluster.Metric,
		Aggregation:   cfg.Cluster.Aggregation,
	}, candidates)
}

func renderCharts(path string, ps *fuzzyc.Points, results []fuzzyc.SweepResult, best fuzzyc.SweepResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	cs := []components.Charter{chart.Validity(results)}

	scatter, err := chart.Scatter(
		fmt.Sprintf("Hard labels for K=%d", best.K),
		ps.Vectors(), best.Result.Labels(), best.Result.Centers(),
	)
	if err != nil {
		return err
	}
	cs = append(cs, scatter, chart.Memberships(
		fmt.Sprintf("Memberships for K=%d", best.K),
		best.Result.Memberships(), heatmapRows,
	))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return chart.Render(f, cs...)
}
