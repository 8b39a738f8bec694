// Package chain composes per-item epistemic chains from catalog entries.
// The composer is a pure order-preserving mapper plus a validator: it never
// reorders, filters, or groups methods.
package chain

import (
	"fmt"
	"slices"
	"sort"

	"tribunal/internal/catalog"
)

// Epistemology labels carried per phase, for diagnostics and narration.
const (
	EpistemologyEmpirical   = "direct extraction"
	EpistemologyInferential = "derived computation"
	EpistemologyAudit       = "validation and veto"
)

// EpistemicChain is the ordered, immutable method chain for one item: three
// per-phase sequences in catalog input order, plus chain metadata. All
// accessors return copies; the chain cannot be mutated after composition.
type EpistemicChain struct {
	itemID          string
	empirical       []catalog.Method
	inferential     []catalog.Method
	audit           []catalog.Method
	dependencies    []string
	outputTarget    string
	efficiencyScore float64
}

func (c *EpistemicChain) ItemID() string { return c.itemID }

// Empirical returns the construction-phase methods in input order.
func (c *EpistemicChain) Empirical() []catalog.Method { return slices.Clone(c.empirical) }

// Inferential returns the computation-phase methods in input order.
func (c *EpistemicChain) Inferential() []catalog.Method { return slices.Clone(c.inferential) }

// Audit returns the litigation-phase methods in input order.
func (c *EpistemicChain) Audit() []catalog.Method { return slices.Clone(c.audit) }

// Methods returns all methods in epistemic order: empirical, inferential,
// audit. Order within each phase is the catalog input order.
func (c *EpistemicChain) Methods() []catalog.Method {
	out := make([]catalog.Method, 0, c.Len())
	out = append(out, c.empirical...)
	out = append(out, c.inferential...)
	out = append(out, c.audit...)
	return out
}

// Len is the total composed method count.
func (c *EpistemicChain) Len() int {
	return len(c.empirical) + len(c.inferential) + len(c.audit)
}

// Dependencies is the sorted union of all requires/modifies/modulates
// references declared by the chain's methods.
func (c *EpistemicChain) Dependencies() []string { return slices.Clone(c.dependencies) }

// OutputTarget names the narrative artifact the terminal synthesis produces.
func (c *EpistemicChain) OutputTarget() string { return c.outputTarget }

// EfficiencyScore is the externally supplied chain metric, passed through
// composition unchanged.
func (c *EpistemicChain) EfficiencyScore() float64 { return c.efficiencyScore }

// Epistemology returns the label for a phase, or "" for unknown phases.
func Epistemology(p catalog.Phase) string {
	switch p {
	case catalog.PhaseConstruction:
		return EpistemologyEmpirical
	case catalog.PhaseComputation:
		return EpistemologyInferential
	case catalog.PhaseLitigation:
		return EpistemologyAudit
	}
	return ""
}

// Composer builds epistemic chains from catalog entries.
type Composer struct{}

// Compose validates level/phase coherence for every method of im and builds
// the item's chain, preserving input order exactly.
//
// A level/phase mismatch or declared-count disagreement returns ErrCoherence
// naming the offending method and the corrective move. A post-composition
// count or metric mismatch returns ErrInternal; that one is a defect in this
// package, not in the catalog.
func (Composer) Compose(im *catalog.ItemMethods) (*EpistemicChain, error) {
	phases := []struct {
		phase   catalog.Phase
		methods []catalog.Method
	}{
		{catalog.PhaseConstruction, im.Construction},
		{catalog.PhaseComputation, im.Computation},
		{catalog.PhaseLitigation, im.Litigation},
	}

	for _, ph := range phases {
		for _, m := range ph.methods {
			want, ok := catalog.PhaseForLevel(m.Level)
			if !ok {
				return nil, fmt.Errorf("%w: item %s method %s has unknown level %q",
					ErrCoherence, im.ItemID, m.ID(), m.Level)
			}
			if want != ph.phase {
				return nil, fmt.Errorf("%w: item %s method %s (level %s) assigned to phase %s; move it to phase %s",
					ErrCoherence, im.ItemID, m.ID(), m.Level, ph.phase, want)
			}
		}
	}

	inputCount := len(im.Construction) + len(im.Computation) + len(im.Litigation)
	if im.DeclaredMethodCount != 0 && im.DeclaredMethodCount != inputCount {
		return nil, fmt.Errorf("%w: item %s declares %d methods, catalog lists %d",
			ErrCoherence, im.ItemID, im.DeclaredMethodCount, inputCount)
	}

	c := &EpistemicChain{
		itemID:          im.ItemID,
		empirical:       slices.Clone(im.Construction),
		inferential:     slices.Clone(im.Computation),
		audit:           slices.Clone(im.Litigation),
		dependencies:    collectDependencies(im),
		outputTarget:    im.OutputTarget,
		efficiencyScore: im.EfficiencyScore,
	}

	// Post-conditions. Violations here are composer defects, reported
	// distinctly from data-authoring errors.
	if c.Len() != inputCount {
		return nil, fmt.Errorf("%w: item %s composed %d methods from %d inputs",
			ErrInternal, im.ItemID, c.Len(), inputCount)
	}
	if c.efficiencyScore != im.EfficiencyScore {
		return nil, fmt.Errorf("%w: item %s efficiency score %v not passed through (input %v)",
			ErrInternal, im.ItemID, c.efficiencyScore, im.EfficiencyScore)
	}

	return c, nil
}

func collectDependencies(im *catalog.ItemMethods) []string {
	set := make(map[string]bool)
	add := func(refs []string) {
		for _, r := range refs {
			set[r] = true
		}
	}
	for _, ms := range [][]catalog.Method{im.Construction, im.Computation, im.Litigation} {
		for _, m := range ms {
			add(m.Requires)
			add(m.Modifies)
			add(m.Modulates)
		}
	}
	deps := make([]string, 0, len(set))
	for d := range set {
		deps = append(deps, d)
	}
	sort.Strings(deps)
	return deps
}
