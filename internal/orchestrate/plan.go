package orchestrate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Task is one unit of the execution plan: one questionnaire item routed to
// its unique chunk. Task identifiers are generated deterministically from
// (item, policy area), so identical inputs always produce identical IDs.
type Task struct {
	ID         string `json:"id"`
	ItemID     string `json:"item_id"`
	PolicyArea int    `json:"policy_area"`
	Dimension  int    `json:"dimension"`
	ChunkKey   string `json:"chunk_key"`
}

// TaskID derives the deterministic identifier for (item, policy area).
func TaskID(itemID string, policyArea int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "task\x00%s\x00%d", itemID, policyArea))
	return hex.EncodeToString(sum[:8])
}

// ExecutionPlan is the content-addressed task set for one run. Tasks are
// stored in canonical (sorted by ID) order; the plan identifier is a content
// hash over the sorted task ID list, so it is order-independent for
// identical task content. Both identifiers are recomputed, never mutated,
// whenever the task set changes.
type ExecutionPlan struct {
	id    string
	tasks []Task
}

// NewPlan canonicalizes the task set and computes the plan identifier.
func NewPlan(tasks []Task) *ExecutionPlan {
	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	h := sha256.New()
	for _, t := range sorted {
		fmt.Fprintf(h, "%s\x00", t.ID)
	}

	return &ExecutionPlan{
		id:    hex.EncodeToString(h.Sum(nil)),
		tasks: sorted,
	}
}

// ID is the plan's content-addressed identifier.
func (p *ExecutionPlan) ID() string { return p.id }

// Tasks returns the tasks in canonical sorted order.
func (p *ExecutionPlan) Tasks() []Task {
	out := make([]Task, len(p.tasks))
	copy(out, p.tasks)
	return out
}

// Len is the task count.
func (p *ExecutionPlan) Len() int { return len(p.tasks) }
