package chain

import "errors"

var (
	// ErrCoherence is returned when a method's level does not match the
	// phase it was assigned to, or the declared method count disagrees with
	// the authored lists. It indicates a data-authoring error upstream and
	// aborts the whole item; it is never silently corrected.
	ErrCoherence = errors.New("chain: level/phase coherence violation")

	// ErrInternal is returned when a composer post-condition fails: the
	// composed count diverges from the input count or carried metrics were
	// not passed through unchanged. This is a logic defect in the composer
	// itself, distinct from ErrCoherence.
	ErrInternal = errors.New("chain: internal composition defect")
)
