package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tribunal/internal/aggregate"
	"tribunal/internal/orchestrate"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("store: not found")

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .tribunal) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	if _, err := s.db.Exec(schemaV1); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	var v int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersionV1); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case v != schemaVersionV1:
		return fmt.Errorf("unsupported schema version %d (want %d)", v, schemaVersionV1)
	}
	return nil
}

// Close closes the underlying database.
func (s *SqlStore) Close() error { return s.db.Close() }

func (s *SqlStore) CreateRun(r *Run) error {
	_, err := s.db.Exec(`INSERT INTO runs(id, started_at, plan_id, matrix_hash, config_json, macro_score, blocked)
		VALUES(?,?,?,?,?,?,?)`,
		r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.PlanID, r.MatrixHash,
		r.ConfigJSON, r.MacroScore, boolInt(r.Blocked))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *SqlStore) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`SELECT id, started_at, plan_id, matrix_hash, config_json, macro_score, blocked
		FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	return r, err
}

func (s *SqlStore) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(`SELECT id, started_at, plan_id, matrix_hash, config_json, macro_score, blocked
		FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var startedAt string
	var blocked int
	if err := row.Scan(&r.ID, &startedAt, &r.PlanID, &r.MatrixHash, &r.ConfigJSON, &r.MacroScore, &blocked); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse run timestamp: %w", err)
	}
	r.StartedAt = t
	r.Blocked = blocked != 0
	return &r, nil
}

func (s *SqlStore) SavePlan(runID string, plan *orchestrate.ExecutionPlan) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range plan.Tasks() {
		if _, err := tx.Exec(`INSERT INTO plan_tasks(run_id, task_id, item_id, policy_area, dimension, chunk_key)
			VALUES(?,?,?,?,?,?)`,
			runID, t.ID, t.ItemID, t.PolicyArea, t.Dimension, t.ChunkKey); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SqlStore) PlanTasks(runID string) ([]orchestrate.Task, error) {
	rows, err := s.db.Query(`SELECT task_id, item_id, policy_area, dimension, chunk_key
		FROM plan_tasks WHERE run_id = ? ORDER BY task_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []orchestrate.Task
	for rows.Next() {
		var t orchestrate.Task
		if err := rows.Scan(&t.ID, &t.ItemID, &t.PolicyArea, &t.Dimension, &t.ChunkKey); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SqlStore) SaveResults(runID string, results []aggregate.ScoredResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range results {
		diag, err := json.Marshal(r.Diagnostics)
		if err != nil {
			return fmt.Errorf("marshal diagnostics for %s: %w", r.Key, err)
		}
		if _, err := tx.Exec(`INSERT INTO results(run_id, layer, key, policy_area, dimension, cluster,
			score, confidence, quality, blocked, diagnostics)
			VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
			runID, string(r.Layer), r.Key, r.PolicyArea, r.Dimension, r.Cluster,
			r.Score, r.Confidence, string(r.Quality), boolInt(r.Blocked), string(diag)); err != nil {
			return fmt.Errorf("insert result %s/%s: %w", r.Layer, r.Key, err)
		}
	}
	return tx.Commit()
}

func (s *SqlStore) Results(runID string, layer aggregate.Layer) ([]aggregate.ScoredResult, error) {
	rows, err := s.db.Query(`SELECT layer, key, policy_area, dimension, cluster,
		score, confidence, quality, blocked, diagnostics
		FROM results WHERE run_id = ? AND layer = ? ORDER BY key`, runID, string(layer))
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []aggregate.ScoredResult
	for rows.Next() {
		var r aggregate.ScoredResult
		var layerStr, qualityStr, diag string
		var blocked int
		if err := rows.Scan(&layerStr, &r.Key, &r.PolicyArea, &r.Dimension, &r.Cluster,
			&r.Score, &r.Confidence, &qualityStr, &blocked, &diag); err != nil {
			return nil, err
		}
		r.Layer = aggregate.Layer(layerStr)
		r.Quality = aggregate.Quality(qualityStr)
		r.Blocked = blocked != 0
		if err := json.Unmarshal([]byte(diag), &r.Diagnostics); err != nil {
			return nil, fmt.Errorf("unmarshal diagnostics for %s: %w", r.Key, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
