// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output, markdown reports, logs, and docs.
// Keep raw codes for JSON fields, map keys, and equality comparisons.
package display

import (
	"tribunal/internal/aggregate"
	"tribunal/internal/catalog"
)

// --- Epistemic levels ---

var levels = map[catalog.Level]string{
	catalog.LevelEmpirical:   "Empirical Extraction",
	catalog.LevelInferential: "Inferential Computation",
	catalog.LevelAudit:       "Audit / Veto",
}

// Level returns the human-readable name for an epistemic level.
// Unknown codes are returned as-is.
func Level(l catalog.Level) string {
	if name, ok := levels[l]; ok {
		return name
	}
	return string(l)
}

// --- Phases ---

var phases = map[catalog.Phase]string{
	catalog.PhaseConstruction: "Construction",
	catalog.PhaseComputation:  "Computation",
	catalog.PhaseLitigation:   "Litigation",
}

// Phase returns the human-readable name for a chain phase.
func Phase(p catalog.Phase) string {
	if name, ok := phases[p]; ok {
		return name
	}
	return string(p)
}

// --- Veto actions ---

var actions = map[catalog.VetoAction]string{
	catalog.ActionBlock:            "Block",
	catalog.ActionReduceConfidence: "Reduce Confidence",
	catalog.ActionFlag:             "Flag",
	catalog.ActionInvalidate:       "Invalidate",
	catalog.ActionSuppress:         "Suppress",
}

// Action returns the human-readable name for a veto action.
func Action(a catalog.VetoAction) string {
	if name, ok := actions[a]; ok {
		return name
	}
	return string(a)
}

// --- Quality bands ---

var qualities = map[aggregate.Quality]string{
	aggregate.QualityExcellent: "Excellent",
	aggregate.QualityGood:      "Good",
	aggregate.QualityFair:      "Fair",
	aggregate.QualityPoor:      "Poor",
	aggregate.QualityBlocked:   "Blocked by Veto",
}

// Quality returns the human-readable name for a quality band.
func Quality(q aggregate.Quality) string {
	if name, ok := qualities[q]; ok {
		return name
	}
	return string(q)
}

// QualityWithCode returns "Blocked by Veto (blocked)" format.
func QualityWithCode(q aggregate.Quality) string {
	if name, ok := qualities[q]; ok {
		return name + " (" + string(q) + ")"
	}
	return string(q)
}

// --- Layers ---

var layers = map[aggregate.Layer]string{
	aggregate.LayerItem:      "Questionnaire Item",
	aggregate.LayerDimension: "Evaluation Dimension",
	aggregate.LayerArea:      "Policy Area",
	aggregate.LayerCluster:   "Cluster",
	aggregate.LayerMacro:     "Overall",
}

// Layer returns the human-readable name for an aggregation layer.
func Layer(l aggregate.Layer) string {
	if name, ok := layers[l]; ok {
		return name
	}
	return string(l)
}
