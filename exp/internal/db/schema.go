package db

const schema = `
-- Sweeps table (one clustering configuration applied to one data set)
CREATE TABLE IF NOT EXISTS sweeps (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at INTEGER NOT NULL, -- unix seconds
    source TEXT NOT NULL,
    points INTEGER NOT NULL,
    dim INTEGER NOT NULL,
    scaled BOOLEAN NOT NULL,
    fuzziness REAL NOT NULL,
    tolerance REAL NOT NULL,
    max_iterations INTEGER NOT NULL,
    metric TEXT NOT NULL,
    aggregation TEXT NOT NULL
);

-- Candidates table (one cluster count of a sweep)
CREATE TABLE IF NOT EXISTS candidates (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sweep_id INTEGER NOT NULL,
    k INTEGER NOT NULL,

    pc REAL,
    pec REAL,
    iterations INTEGER NOT NULL DEFAULT 0,
    converged BOOLEAN NOT NULL DEFAULT 0,
    objective REAL,
    seed INTEGER NOT NULL DEFAULT 0,
    reseeded INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',

    -- hard k-means baseline for the same k
    kmeans_inertia REAL,

    FOREIGN KEY (sweep_id) REFERENCES sweeps(id) ON DELETE CASCADE,
    UNIQUE(sweep_id, k)
);

-- Centers table (little-endian float64 vectors)
CREATE TABLE IF NOT EXISTS centers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    candidate_id INTEGER NOT NULL,
    idx INTEGER NOT NULL,
    vector BLOB NOT NULL,
    FOREIGN KEY (candidate_id) REFERENCES candidates(id) ON DELETE CASCADE,
    UNIQUE(candidate_id, idx)
);

-- Indexes for performance
CREATE INDEX IF NOT EXISTS idx_candidates_sweep ON candidates(sweep_id);
CREATE INDEX IF NOT EXISTS idx_candidates_pc ON candidates(pc);
CREATE INDEX IF NOT EXISTS idx_centers_candidate ON centers(candidate_id);

-- View for easy querying with all details
CREATE VIEW IF NOT EXISTS candidates_detailed AS
SELECT
    c.id,
    s.id as sweep_id,
    s.source,
    s.points,
    s.metric,
    s.aggregation,
    s.fuzziness,

    c.k,
    c.pc,
    c.pec,
    c.iterations,
    c.converged,
    c.objective,
    c.seed,
    c.error,
    c.kmeans_inertia
FROM candidates c
JOIN sweeps s ON c.sweep_id = s.id;
`
