package fusion

import (
	"fmt"
	"log/slog"

	"tribunal/internal/catalog"
	"tribunal/internal/chain"
	"tribunal/internal/config"
	"tribunal/internal/logging"
)

// Fused is the terminal synthesis of one item's evidence graph: the item's
// final evidence representation plus its score and veto status.
type Fused struct {
	ItemID     string
	Score      float64
	Confidence float64
	Blocked    bool
	Narrative  string
	Flags      []string
	Triggered  []TriggeredVeto
	Graph      *Graph
}

// Engine applies the four type-specific fusion operations in epistemic
// order: empirical facts, inferential parameters, audit gate, terminal
// narrative synthesis.
type Engine struct {
	cfg config.Config
	log *slog.Logger
}

// NewEngine returns an engine using the configured clamp bounds.
func NewEngine(cfg config.Config) *Engine {
	return &Engine{cfg: cfg, log: logging.New("fusion")}
}

// Fuse builds the evidence graph for ec from the producer's evidence and
// applies the gate, then runs the terminal synthesis.
//
// Evidence type tags are re-validated here: an unknown type, a tag
// contradicting the producing method's declaration, or NARRATIVE appearing
// as input fails closed for the item. Missing required dependencies fail
// closed the same way. No default fusion strategy exists.
func (e *Engine) Fuse(ec *chain.EpistemicChain, evidence []EvidenceItem, gate Gate) (*Fused, error) {
	declared := make(map[string]catalog.Method, ec.Len())
	for _, m := range ec.Methods() {
		declared[m.ID()] = m
	}

	produced := make(map[string]bool, len(evidence))
	for _, ev := range evidence {
		if err := validateEvidence(ec.ItemID(), declared, ev); err != nil {
			return nil, err
		}
		produced[ev.Method] = true
	}

	for _, m := range ec.Methods() {
		for _, req := range m.Requires {
			if !produced[req] {
				return nil, fmt.Errorf("%w: item %s method %s requires %q, no such evidence produced",
					ErrMissingDependency, ec.ItemID(), m.ID(), req)
			}
		}
	}

	g := NewGraph(ec.ItemID(), e.cfg.FusionClampMin, e.cfg.FusionClampMax)

	// Additive: every fact is an independent node.
	for _, ev := range evidence {
		if ev.Type == catalog.OutputFact {
			g.AddFact(ev)
		}
	}

	// Multiplicative: parameters modify the running weight, clamped.
	for _, ev := range evidence {
		if ev.Type == catalog.OutputParameter {
			g.ApplyParameter(ev, declared[ev.Method].Modulates)
		}
	}

	// Gate: audit constraints are evaluated by the veto gate.
	var audit []EvidenceItem
	for _, ev := range evidence {
		if ev.Type == catalog.OutputConstraint {
			audit = append(audit, ev)
		}
	}
	outcome, err := gate.Evaluate(audit, g)
	if err != nil {
		return nil, fmt.Errorf("item %s: gate: %w", ec.ItemID(), err)
	}
	for _, scope := range outcome.SuppressedScopes {
		g.Suppress(scope)
	}

	// Terminal: one synthesis step consumes the finished graph.
	return e.synthesize(ec, g, evidence, outcome), nil
}

// synthesize produces the item's final evidence representation. The score is
// the confidence-weighted mean of active fact strengths scaled by the
// clamped graph weight; the item confidence folds the gate's multiplier in.
func (e *Engine) synthesize(ec *chain.EpistemicChain, g *Graph, evidence []EvidenceItem, outcome GateOutcome) *Fused {
	active := g.ActiveNodes()

	var strengthSum, weightSum float64
	for _, n := range active {
		strengthSum += n.Strength * n.Confidence
		weightSum += n.Confidence
	}

	var score float64
	if weightSum > 0 {
		score = clamp01((strengthSum / weightSum) * g.Weight())
	}

	var confSum float64
	for _, ev := range evidence {
		confSum += ev.Confidence
	}
	confidence := 0.0
	if len(evidence) > 0 {
		confidence = clamp01(confSum / float64(len(evidence)) * outcome.ConfidenceMultiplier)
	}

	target := ec.OutputTarget()
	if target == "" {
		target = ec.ItemID() + "_synthesis"
	}
	narrative := fmt.Sprintf("%s: %d facts (%d active), weight %.3f, %d vetoes triggered",
		target, len(g.Nodes()), len(active), g.Weight(), len(outcome.Triggered))

	if outcome.Blocked {
		e.log.Debug("item blocked by veto gate", "item", ec.ItemID(), "triggered", len(outcome.Triggered))
	}

	return &Fused{
		ItemID:     ec.ItemID(),
		Score:      score,
		Confidence: confidence,
		Blocked:    outcome.Blocked,
		Narrative:  narrative,
		Flags:      outcome.Flags,
		Triggered:  outcome.Triggered,
		Graph:      g,
	}
}

// validateEvidence re-checks producer output against the chain's methods.
func validateEvidence(itemID string, declared map[string]catalog.Method, ev EvidenceItem) error {
	if _, ok := catalog.BehaviorForOutputType(ev.Type); !ok {
		return fmt.Errorf("%w: item %s evidence from %s has unknown type %q",
			ErrEvidenceType, itemID, ev.Method, ev.Type)
	}
	if ev.Type == catalog.OutputNarrative {
		return fmt.Errorf("%w: item %s evidence from %s", ErrNarrativeConsumed, itemID, ev.Method)
	}

	m, ok := declared[ev.Method]
	if !ok {
		return fmt.Errorf("%w: item %s evidence from %s, no such method in chain",
			ErrEvidenceType, itemID, ev.Method)
	}
	if ev.Type != m.OutputType {
		return fmt.Errorf("%w: item %s evidence from %s tagged %s, method declares %s",
			ErrEvidenceType, itemID, ev.Method, ev.Type, m.OutputType)
	}
	if ev.Level != m.Level {
		return fmt.Errorf("%w: item %s evidence from %s tagged level %s, method declares %s",
			ErrEvidenceType, itemID, ev.Method, ev.Level, m.Level)
	}
	return nil
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
