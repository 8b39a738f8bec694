package fusion

import "errors"

var (
	// ErrEvidenceType is returned when an evidence item carries an unknown
	// output type or a type tag that contradicts its producing method's
	// declaration. Fusion fails closed for the item; no default strategy is
	// ever applied.
	ErrEvidenceType = errors.New("fusion: evidence type error")

	// ErrMissingDependency is returned when a method's required input was
	// not produced by any earlier method of the same chain. The item is
	// marked invalid and excluded from aggregation.
	ErrMissingDependency = errors.New("fusion: missing required dependency")

	// ErrNarrativeConsumed is returned when NARRATIVE evidence appears as
	// fusion input. The terminal synthesis is the only consumer of the
	// finished graph; nothing may fuse narrative output further.
	ErrNarrativeConsumed = errors.New("fusion: narrative output cannot be fused")
)
