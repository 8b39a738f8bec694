// Package fusion fuses heterogeneous evidence produced by one item's chain
// into a single evidence graph and item score. Four operations, one per
// output type, applied in epistemic order: additive (facts), multiplicative
// (parameters), gate (constraints), terminal (narrative synthesis).
package fusion

import (
	"tribunal/internal/catalog"
)

// EvidenceItem is one typed value produced by one method execution. It is
// owned exclusively by the item's evidence graph until fused and does not
// outlive the item's processing.
type EvidenceItem struct {
	// Method is the producing method's "Class.method" identity.
	Method string

	// Level and Type tag the item's origin. The engine re-validates them
	// against the chain's declarations at fusion time.
	Level catalog.Level
	Type  catalog.OutputType

	// Statement is the human-readable finding (fact text, parameter
	// rationale, or audit observation).
	Statement string

	// Value is type-dependent: fact strength in [0,1] for FACT, the
	// multiplicative factor for PARAMETER, unused for CONSTRAINT.
	Value float64

	// Confidence in [0,1] as reported by the producer.
	Confidence float64
}

// GateOutcome is the veto gate's verdict over an item's audit evidence.
// The gate is implemented elsewhere; fusion only applies the outcome.
type GateOutcome struct {
	// Blocked is set when a block or invalidate action fired. A blocked
	// item keeps its diagnostics but its contribution upward is gated.
	Blocked bool

	// ConfidenceMultiplier is the running product of triggered conditions'
	// multipliers, starting at 1.
	ConfidenceMultiplier float64

	// SuppressedScopes lists evidence scopes removed from synthesis.
	SuppressedScopes []string

	// Flags carries non-blocking diagnostic marks (flag actions and
	// under-specified audit methods).
	Flags []string

	// Triggered records every condition that fired, for diagnostics.
	Triggered []TriggeredVeto
}

// TriggeredVeto identifies one fired veto condition.
type TriggeredVeto struct {
	Method     string
	Condition  string
	Action     catalog.VetoAction
	Multiplier float64
}

// Gate evaluates audit-level veto conditions against accumulated evidence.
// Implementations must honor the asymmetry invariant: audit evidence may
// block or discount lower levels, never the reverse.
type Gate interface {
	Evaluate(audit []EvidenceItem, g *Graph) (GateOutcome, error)
}
