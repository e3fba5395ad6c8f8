package db

import (
	"context"
	"database/sql"
	"fmt"
)

// DetailedCandidate contains all joined information for a candidate
type DetailedCandidate struct {
	ID      int64
	SweepID int64

	// Sweep info
	Source      string
	Points      int
	Metric      string
	Aggregation string
	Fuzziness   float64

	// Outcome
	K             int
	PC            sql.NullFloat64
	PEC           sql.NullFloat64
	Iterations    int
	Converged     bool
	Objective     sql.NullFloat64
	Seed          int64
	Error         string
	KMeansInertia sql.NullFloat64
}

// QueryDetailed executes a query on the candidates_detailed view
func (d *DB) QueryDetailed(ctx context.Context, query string, args ...any) ([]*DetailedCandidate, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var results []*DetailedCandidate
	for rows.Next() {
		var r DetailedCandidate
		err := rows.Scan(
			&r.ID,
			&r.SweepID,
			&r.Source,
			&r.Points,
			&r.Metric,
			&r.Aggregation,
			&r.Fuzziness,
			&r.K,
			&r.PC,
			&r.PEC,
			&r.Iterations,
			&r.Converged,
			&r.Objective,
			&r.Seed,
			&r.Error,
			&r.KMeansInertia,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// GetRankedCandidates returns the successful candidates of a sweep, best PC first
// (ties broken by lower PEC)
func (d *DB) GetRankedCandidates(ctx context.Context, sweepID int64) ([]*DetailedCandidate, error) {
	return d.QueryDetailed(ctx, `
		SELECT * FROM candidates_detailed
		WHERE sweep_id = ? AND error = ''
		ORDER BY pc DESC, pec ASC
	`, sweepID)
}

// GetFailedCandidates returns candidates that produced no partition
func (d *DB) GetFailedCandidates(ctx context.Context) ([]*DetailedCandidate, error) {
	return d.QueryDetailed(ctx, `
		SELECT * FROM candidates_detailed
		WHERE error != ''
		ORDER BY sweep_id, k
	`)
}

// KStats holds statistics for one cluster count across sweeps
type KStats struct {
	K             int
	Runs          int
	Converged     int
	AvgPC         float64
	AvgPEC        float64
	AvgIterations float64
}

// GetKStats returns statistics grouped by cluster count over successful candidates
func (d *DB) GetKStats(ctx context.Context) ([]*KStats, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT
			k,
			COUNT(*) as runs,
			SUM(CASE WHEN converged THEN 1 ELSE 0 END) as converged,
			AVG(pc) as avg_pc,
			AVG(pec) as avg_pec,
			AVG(iterations) as avg_iterations
		FROM candidates_detailed
		WHERE error = ''
		GROUP BY k
		ORDER BY k
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query k stats: %w", err)
	}
	defer rows.Close()

	var stats []*KStats
	for rows.Next() {
		var s KStats
		err := rows.Scan(&s.K, &s.Runs, &s.Converged, &s.AvgPC, &s.AvgPEC, &s.AvgIterations)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// ExecuteRawQuery executes a raw SQL query and returns rows
func (d *DB) ExecuteRawQuery(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, query, args...)
}
