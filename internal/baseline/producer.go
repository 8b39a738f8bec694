// Package baseline provides deterministic stand-ins for the external
// evidence-production and signal-resolution collaborators. The CLI uses them
// for dry runs and calibration; real deployments plug in an actual method
// execution engine at the same interfaces.
package baseline

import (
	"context"
	"strings"

	"tribunal/internal/catalog"
	"tribunal/internal/chain"
	"tribunal/internal/fusion"
	"tribunal/internal/orchestrate"
)

// Producer derives evidence from chunk text with fixed lexical heuristics.
// Facts carry a coverage strength from keyword density; parameters stay
// neutral; audit statements surface negation-heavy passages so that veto
// triggers phrased around them can fire.
type Producer struct{}

// Execute returns one evidence item per chain method, in chain order.
func (Producer) Execute(_ context.Context, ec *chain.EpistemicChain, chunk orchestrate.Chunk, signals map[string]float64) ([]fusion.EvidenceItem, error) {
	words := strings.Fields(chunk.Content)
	strength := coverageStrength(words)

	// Resolved signals raise the baseline confidence.
	confidence := 0.7
	if len(signals) > 0 {
		confidence = 0.85
	}

	var out []fusion.EvidenceItem
	for _, m := range ec.Methods() {
		ev := fusion.EvidenceItem{
			Method:     m.ID(),
			Level:      m.Level,
			Type:       m.OutputType,
			Confidence: confidence,
		}
		switch m.OutputType {
		case catalog.OutputFact:
			ev.Statement = "lexical coverage of " + chunk.Key()
			ev.Value = strength
		case catalog.OutputParameter:
			ev.Statement = "neutral scaling"
			ev.Value = 1.0
		case catalog.OutputConstraint:
			ev.Statement = auditStatement(words)
		}
		out = append(out, ev)
	}
	return out, nil
}

// coverageStrength maps word count into [0.2, 0.9]; longer chunks give the
// extractor more to anchor on.
func coverageStrength(words []string) float64 {
	s := 0.2 + float64(len(words))/200.0
	return min(s, 0.9)
}

// auditStatement flags chunks dominated by negations, which downstream veto
// triggers commonly key on.
func auditStatement(words []string) string {
	negations := 0
	for _, w := range words {
		switch strings.ToLower(strings.Trim(w, ".,;:")) {
		case "not", "no", "never", "except", "unless":
			negations++
		}
	}
	if len(words) > 0 && float64(negations)/float64(len(words)) > 0.05 {
		return "passage is negation-dominated"
	}
	return "no findings"
}

// Resolver resolves every requested signal to a neutral unit value. It never
// fails; a real resolver sits behind the same interface.
type Resolver struct{}

// Resolve returns 1.0 for each requested signal identifier.
func (Resolver) Resolve(_ context.Context, _ orchestrate.Chunk, signals []string) (map[string]float64, error) {
	out := make(map[string]float64, len(signals))
	for _, s := range signals {
		out[s] = 1.0
	}
	return out, nil
}
