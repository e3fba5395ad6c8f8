package db

import (
	"context"
	"fmt"
	"time"
)

// InsertSweep stores a sweep with all of its candidates and their centers in one
// transaction. IDs are written back into s and candidates.
func (d *DB) InsertSweep(ctx context.Context, s *Sweep, candidates []*Candidate) (int64, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO sweeps (
			created_at, source, points, dim, scaled,
			fuzziness, tolerance, max_iterations, metric, aggregation
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.CreatedAt.Unix(), s.Source, s.Points, s.Dim, s.Scaled,
		s.Fuzziness, s.Tolerance, s.MaxIterations, s.Metric, s.Aggregation,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sweep: %w", err)
	}
	sweepID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, c := range candidates {
		c.SweepID = sweepID
		res, err := tx.ExecContext(ctx, `
			INSERT INTO candidates (
				sweep_id, k, pc, pec, iterations, converged,
				objective, seed, reseeded, error, kmeans_inertia
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sweepID, c.K, c.PC, c.PEC, c.Iterations, c.Converged,
			c.Objective, c.Seed, c.Reseeded, c.Error, c.KMeansInertia,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert candidate k=%d: %w", c.K, err)
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return 0, err
		}
		for i, v := range c.Centers {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO centers (candidate_id, idx, vector) VALUES (?, ?, ?)",
				c.ID, i, Float64SliceToBytes(v),
			); err != nil {
				return 0, fmt.Errorf("failed to insert center %d of k=%d: %w", i, c.K, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sweep: %w", err)
	}
	s.ID = sweepID
	return sweepID, nil
}

// GetSweep retrieves a sweep by ID
func (d *DB) GetSweep(ctx context.Context, id int64) (*Sweep, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, created_at, source, points, dim, scaled,
		       fuzziness, tolerance, max_iterations, metric, aggregation
		FROM sweeps WHERE id = ?`, id)
	s, err := scanSweep(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get sweep: %w", err)
	}
	return s, nil
}

// ListSweeps retrieves all sweeps, newest first
func (d *DB) ListSweeps(ctx context.Context) ([]*Sweep, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, created_at, source, points, dim, scaled,
		       fuzziness, tolerance, max_iterations, metric, aggregation
		FROM sweeps
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sweeps: %w", err)
	}
	defer rows.Close()

	var sweeps []*Sweep
	for rows.Next() {
		s, err := scanSweep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sweep: %w", err)
		}
		sweeps = append(sweeps, s)
	}
	return sweeps, rows.Err()
}

// ListCandidates retrieves the candidates of a sweep ordered by k, with their centers
func (d *DB) ListCandidates(ctx context.Context, sweepID int64) ([]*Candidate, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, sweep_id, k, pc, pec, iterations, converged,
		       objective, seed, reseeded, error, kmeans_inertia
		FROM candidates
		WHERE sweep_id = ?
		ORDER BY k
	`, sweepID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*Candidate
	for rows.Next() {
		var c Candidate
		err := rows.Scan(
			&c.ID, &c.SweepID, &c.K, &c.PC, &c.PEC, &c.Iterations, &c.Converged,
			&c.Objective, &c.Seed, &c.Reseeded, &c.Error, &c.KMeansInertia,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, c := range candidates {
		if c.Centers, err = d.Centers(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	return candidates, nil
}

// Centers retrieves the centers of a candidate in index order
func (d *DB) Centers(ctx context.Context, candidateID int64) ([][]float64, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT vector FROM centers WHERE candidate_id = ? ORDER BY idx", candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query centers: %w", err)
	}
	defer rows.Close()

	var centers [][]float64
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("failed to scan center: %w", err)
		}
		v, err := BytesToFloat64Slice(blob)
		if err != nil {
			return nil, err
		}
		centers = append(centers, v)
	}
	return centers, rows.Err()
}

// CountSweeps counts total sweeps
func (d *DB) CountSweeps(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sweeps").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sweeps: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSweep(row scanner) (*Sweep, error) {
	var (
		s       Sweep
		created int64
	)
	err := row.Scan(
		&s.ID, &created, &s.Source, &s.Points, &s.Dim, &s.Scaled,
		&s.Fuzziness, &s.Tolerance, &s.MaxIterations, &s.Metric, &s.Aggregation,
	)
	if err != nil {
		return nil, err
	}
	s.CreatedAt = time.Unix(created, 0)
	return &s, nil
}
