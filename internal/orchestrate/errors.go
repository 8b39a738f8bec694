package orchestrate

import "errors"

var (
	// ErrMatrix is returned when the chunk matrix is malformed: not exactly
	// 60 entries, an empty chunk content, or a duplicate (area, dimension)
	// key. Fatal for the run.
	ErrMatrix = errors.New("orchestrate: malformed chunk matrix")

	// ErrRouting is returned when an item's (area, dimension) pair has no
	// matching chunk. Fatal for the run.
	ErrRouting = errors.New("orchestrate: no chunk for item")
)
