// Package catalog defines the method-catalog data model: per-item analysis
// methods classified by epistemic level, with declared output types, fusion
// behaviors, and audit veto conditions. The catalog is loaded once per run
// and consumed read-only by the composer and orchestrator.
package catalog

import (
	"fmt"
	"sync"
)

// Level is the epistemic level of a method.
type Level string

const (
	LevelEmpirical   Level = "EMPIRICAL"   // direct extraction from the document
	LevelInferential Level = "INFERENTIAL" // derived computation over extracted facts
	LevelAudit       Level = "AUDIT"       // validation / veto over lower levels
)

// Phase is the position of a method inside an item's chain.
type Phase string

const (
	PhaseConstruction Phase = "construction"
	PhaseComputation  Phase = "computation"
	PhaseLitigation   Phase = "litigation"
)

// OutputType is the evidence type a method produces.
type OutputType string

const (
	OutputFact       OutputType = "FACT"
	OutputParameter  OutputType = "PARAMETER"
	OutputConstraint OutputType = "CONSTRAINT"
	OutputNarrative  OutputType = "NARRATIVE"
)

// FusionBehavior is the merge semantics associated with an output type.
type FusionBehavior string

const (
	FusionAdditive       FusionBehavior = "additive"
	FusionMultiplicative FusionBehavior = "multiplicative"
	FusionGate           FusionBehavior = "gate"
	FusionTerminal       FusionBehavior = "terminal"
)

// VetoAction is one of the closed set of actions a triggered veto may take.
type VetoAction string

const (
	ActionBlock            VetoAction = "block"
	ActionReduceConfidence VetoAction = "reduce-confidence"
	ActionFlag             VetoAction = "flag"
	ActionInvalidate       VetoAction = "invalidate"
	ActionSuppress         VetoAction = "suppress"
)

// knownActions is the closed action set. New actions require an explicit
// entry here; unknown strings are rejected at validation time.
var knownActions = map[VetoAction]bool{
	ActionBlock:            true,
	ActionReduceConfidence: true,
	ActionFlag:             true,
	ActionInvalidate:       true,
	ActionSuppress:         true,
}

// Known reports whether a is part of the closed action set.
func (a VetoAction) Known() bool { return knownActions[a] }

// PhaseForLevel returns the unique phase a level belongs to. The mapping is
// a bijection; a method assigned elsewhere is a coherence violation.
func PhaseForLevel(l Level) (Phase, bool) {
	switch l {
	case LevelEmpirical:
		return PhaseConstruction, true
	case LevelInferential:
		return PhaseComputation, true
	case LevelAudit:
		return PhaseLitigation, true
	}
	return "", false
}

// LevelForPhase is the inverse of PhaseForLevel.
func LevelForPhase(p Phase) (Level, bool) {
	switch p {
	case PhaseConstruction:
		return LevelEmpirical, true
	case PhaseComputation:
		return LevelInferential, true
	case PhaseLitigation:
		return LevelAudit, true
	}
	return "", false
}

// OutputTypeForLevel returns the output type a level's methods must declare.
func OutputTypeForLevel(l Level) (OutputType, bool) {
	switch l {
	case LevelEmpirical:
		return OutputFact, true
	case LevelInferential:
		return OutputParameter, true
	case LevelAudit:
		return OutputConstraint, true
	}
	return "", false
}

// BehaviorForOutputType returns the fusion behavior an output type carries.
func BehaviorForOutputType(t OutputType) (FusionBehavior, bool) {
	switch t {
	case OutputFact:
		return FusionAdditive, true
	case OutputParameter:
		return FusionMultiplicative, true
	case OutputConstraint:
		return FusionGate, true
	case OutputNarrative:
		return FusionTerminal, true
	}
	return "", false
}

// VetoCondition is one audit veto: a trigger predicate, the action taken on
// trigger, the evidence scope it applies to, and the confidence multiplier.
type VetoCondition struct {
	Trigger              string     `yaml:"trigger" json:"trigger"`
	Action               VetoAction `yaml:"action" json:"action"`
	Scope                string     `yaml:"scope" json:"scope"`
	ConfidenceMultiplier float64    `yaml:"confidence_multiplier" json:"confidence_multiplier"`
}

// Method is one analysis method as declared by the catalog.
type Method struct {
	ClassName  string     `yaml:"class_name" json:"class_name"`
	MethodName string     `yaml:"method_name" json:"method_name"`
	Level      Level      `yaml:"level" json:"level"`
	OutputType OutputType `yaml:"output_type" json:"output_type"`

	// FusionBehavior is redundant with OutputType by construction; it is
	// carried so authoring errors surface as coherence violations instead
	// of being silently recomputed.
	FusionBehavior FusionBehavior `yaml:"fusion_behavior" json:"fusion_behavior"`

	Requires  []string `yaml:"requires,omitempty" json:"requires,omitempty"`
	Modifies  []string `yaml:"modifies,omitempty" json:"modifies,omitempty"`
	Modulates []string `yaml:"modulates,omitempty" json:"modulates,omitempty"`

	// Vetoes must be non-empty for AUDIT methods and empty for all others.
	Vetoes map[string]VetoCondition `yaml:"vetoes,omitempty" json:"vetoes,omitempty"`
}

// ID returns the "Class.method" identity used in diagnostics and references.
func (m Method) ID() string { return m.ClassName + "." + m.MethodName }

// ItemMethods is the catalog entry for one questionnaire item: three ordered
// per-phase method lists plus routing and chain metadata.
type ItemMethods struct {
	ItemID     string `yaml:"item_id" json:"item_id"`
	PolicyArea int    `yaml:"policy_area" json:"policy_area"`
	Dimension  int    `yaml:"dimension" json:"dimension"`

	Construction []Method `yaml:"construction" json:"construction"`
	Computation  []Method `yaml:"computation" json:"computation"`
	Litigation   []Method `yaml:"litigation" json:"litigation"`

	// DeclaredMethodCount is the author's total; the composer cross-checks
	// it against the actual per-phase sums.
	DeclaredMethodCount int `yaml:"declared_method_count" json:"declared_method_count"`

	// EfficiencyScore is externally supplied chain metadata, passed through
	// the composer unchanged.
	EfficiencyScore float64 `yaml:"efficiency_score" json:"efficiency_score"`

	// OutputTarget names the narrative artifact the terminal synthesis
	// produces for this item.
	OutputTarget string `yaml:"output_target" json:"output_target"`
}

// MethodCount is the actual total across the three phases.
func (im ItemMethods) MethodCount() int {
	return len(im.Construction) + len(im.Computation) + len(im.Litigation)
}

// Catalog is the full method catalog, ordered as authored. Items must not
// be mutated after the first Item call; the index is built exactly once.
type Catalog struct {
	Items []ItemMethods `yaml:"items" json:"items"`

	indexOnce sync.Once
	byID      map[string]*ItemMethods
}

// Item returns the entry for itemID, if present. Safe for concurrent use.
func (c *Catalog) Item(itemID string) (*ItemMethods, bool) {
	c.indexOnce.Do(c.reindex)
	im, ok := c.byID[itemID]
	return im, ok
}

func (c *Catalog) reindex() {
	c.byID = make(map[string]*ItemMethods, len(c.Items))
	for i := range c.Items {
		c.byID[c.Items[i].ItemID] = &c.Items[i]
	}
}

// String implements fmt.Stringer for diagnostics.
func (c *Catalog) String() string {
	return fmt.Sprintf("catalog(%d items)", len(c.Items))
}
