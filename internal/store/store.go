// Package store persists evaluation runs: run metadata, execution plans, and
// the five scored-result layers. Domain and CLI use only the Store
// interface; the implementation is SQLite or in-memory.
package store

import (
	"time"

	"tribunal/internal/aggregate"
	"tribunal/internal/orchestrate"
)

// DefaultDBPath is the default relative path for the SQLite DB.
// Resolve against cwd; Open() creates the parent dir.
const DefaultDBPath = ".tribunal/tribunal.db"

// Run is one persisted evaluation run.
type Run struct {
	ID         string // uuid
	StartedAt  time.Time
	PlanID     string
	MatrixHash string
	ConfigJSON string
	MacroScore float64
	Blocked    bool
}

// Store is the persistence facade for runs, plans, and scored results.
type Store interface {
	// Runs
	CreateRun(r *Run) error
	GetRun(id string) (*Run, error)
	ListRuns() ([]*Run, error)
	// Plans
	SavePlan(runID string, plan *orchestrate.ExecutionPlan) error
	PlanTasks(runID string) ([]orchestrate.Task, error)
	// Results
	SaveResults(runID string, results []aggregate.ScoredResult) error
	Results(runID string, layer aggregate.Layer) ([]aggregate.ScoredResult, error)

	Close() error
}
