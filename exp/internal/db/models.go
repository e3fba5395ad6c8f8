package db

import (
	"database/sql"
	"time"
)

type (
	// Sweep represents the configuration shared by every candidate of one sweep
	Sweep struct {
		ID            int64
		CreatedAt     time.Time
		Source        string
		Points        int
		Dim           int
		Scaled        bool
		Fuzziness     float64
		Tolerance     float64
		MaxIterations int
		Metric        string
		Aggregation   string
	}

	// Candidate represents the outcome for one cluster count
	Candidate struct {
		ID         int64
		SweepID    int64
		K          int
		PC         sql.NullFloat64
		PEC        sql.NullFloat64
		Iterations int
		Converged  bool
		Objective  sql.NullFloat64
		Seed       int64
		Reseeded   int
		Error      string // empty on success

		KMeansInertia sql.NullFloat64

		// Centers is loaded separately; see DB.Centers
		Centers [][]float64
	}
)

// Failed reports whether the candidate produced no partition.
func (c *Candidate) Failed() bool {
	return c.Error != ""
}
