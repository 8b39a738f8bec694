// Package aggregate folds 300 item scores through the fixed cardinality
// pipeline 300→60→10→4→1, computing dispersion penalties and propagating
// veto blocks upward at every stage.
package aggregate

import "fmt"

// Layer identifies which aggregation layer a ScoredResult belongs to.
type Layer string

const (
	LayerItem      Layer = "item"
	LayerDimension Layer = "dimension"
	LayerArea      Layer = "area"
	LayerCluster   Layer = "cluster"
	LayerMacro     Layer = "macro"
)

// Quality is the human-facing band derived from score, confidence, and veto
// status. Pure derivation; it adds no invariant of its own.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
	QualityBlocked   Quality = "blocked"
)

// QualityFor derives the band for a result.
func QualityFor(score, confidence float64, blocked bool) Quality {
	switch {
	case blocked:
		return QualityBlocked
	case confidence < 0.2:
		return QualityPoor
	case score >= 0.85:
		return QualityExcellent
	case score >= 0.65:
		return QualityGood
	case score >= 0.4:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Diagnostics carries layer-specific metadata computed during aggregation.
type Diagnostics struct {
	ChildCount      int     `json:"child_count"`
	BlockedChildren int     `json:"blocked_children"`
	Variance        float64 `json:"variance"`
	Coherence       float64 `json:"coherence"`
	PenaltyApplied  float64 `json:"penalty_applied"`
}

// ScoredResult is one node of the aggregation pyramid. It is created once by
// the aggregator for its layer, consumed read-only by the next layer up, and
// never mutated after creation.
type ScoredResult struct {
	Layer      Layer   `json:"layer"`
	Key        string  `json:"key"`
	PolicyArea int     `json:"policy_area,omitempty"`
	Dimension  int     `json:"dimension,omitempty"`
	Cluster    int     `json:"cluster,omitempty"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Quality    Quality `json:"quality"`
	Blocked    bool    `json:"blocked"`

	Diagnostics Diagnostics `json:"diagnostics"`
}

// DimensionKey is the canonical parent key for the item→dimension stage.
func DimensionKey(area, dimension int) string {
	return fmt.Sprintf("area%02d/dim%d", area, dimension)
}

// AreaKey is the canonical parent key for the dimension→area stage.
func AreaKey(area int) string { return fmt.Sprintf("area%02d", area) }

// ClusterKey is the canonical parent key for the area→cluster stage.
func ClusterKey(cluster int) string { return fmt.Sprintf("cluster%d", cluster) }

// MacroKey is the single top-level key.
const MacroKey = "macro"
