package store

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"tribunal/internal/aggregate"
	"tribunal/internal/orchestrate"
)

// MemStore is the in-memory Store used by tests and dry runs.
type MemStore struct {
	mu      sync.Mutex
	runs    map[string]*Run
	order   []string
	tasks   map[string][]orchestrate.Task
	results map[string][]aggregate.ScoredResult
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		runs:    make(map[string]*Run),
		tasks:   make(map[string][]orchestrate.Task),
		results: make(map[string][]aggregate.ScoredResult),
	}
}

func (s *MemStore) CreateRun(r *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[r.ID]; exists {
		return fmt.Errorf("run %s already exists", r.ID)
	}
	cp := *r
	s.runs[r.ID] = &cp
	s.order = append(s.order, r.ID)
	return nil
}

func (s *MemStore) GetRun(id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	cp := *r
	return &cp, nil
}

func (s *MemStore) ListRuns() ([]*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Run, 0, len(s.order))
	// Most recent first, matching the SQL implementation.
	for i := len(s.order) - 1; i >= 0; i-- {
		cp := *s.runs[s.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemStore) SavePlan(runID string, plan *orchestrate.ExecutionPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[runID] = plan.Tasks()
	return nil
}

func (s *MemStore) PlanTasks(runID string) ([]orchestrate.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks[runID]), nil
}

func (s *MemStore) SaveResults(runID string, results []aggregate.ScoredResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[runID] = append(s.results[runID], results...)
	return nil
}

func (s *MemStore) Results(runID string, layer aggregate.Layer) ([]aggregate.ScoredResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []aggregate.ScoredResult
	for _, r := range s.results[runID] {
		if r.Layer == layer {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemStore) Close() error { return nil }
