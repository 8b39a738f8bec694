// Package veto evaluates audit-level veto conditions against accumulated
// evidence. Audit evidence may block, suppress, or discount empirical and
// inferential evidence; the reverse direction is structurally forbidden.
package veto

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"tribunal/internal/catalog"
	"tribunal/internal/chain"
	"tribunal/internal/fusion"
	"tribunal/internal/logging"
)

// ErrAsymmetry is returned when a lower-level method declares a dependency
// edge onto an audit method. Audit evidence judges lower levels; nothing
// below the audit level may reference audit output.
var ErrAsymmetry = errors.New("veto: reverse edge onto audit level")

// Gate holds one item's audit methods and evaluates their veto conditions.
// It implements fusion.Gate.
type Gate struct {
	itemID            string
	auditMethods      []catalog.Method
	severityThreshold float64
	log               *slog.Logger
}

// NewGate builds the gate for one composed chain. severityThreshold is the
// confidence multiplier at or below which a condition counts as severe.
func NewGate(ec *chain.EpistemicChain, severityThreshold float64) *Gate {
	return &Gate{
		itemID:            ec.ItemID(),
		auditMethods:      ec.Audit(),
		severityThreshold: severityThreshold,
		log:               logging.New("veto"),
	}
}

// Evaluate checks every veto condition of every audit method against the
// accumulated evidence. A condition triggers when its trigger phrase matches
// a fact statement in the graph or the audit method's own evidence
// statement. On trigger the action is applied and the running confidence
// multiplier is multiplied by the condition's multiplier.
//
// Audit methods lacking at least one severe condition are flagged as
// under-specified; the chain is not rejected.
func (g *Gate) Evaluate(audit []fusion.EvidenceItem, graph *fusion.Graph) (fusion.GateOutcome, error) {
	outcome := fusion.GateOutcome{ConfidenceMultiplier: 1.0}

	statements := graph.Statements()
	evidenceByMethod := make(map[string]fusion.EvidenceItem, len(audit))
	for _, ev := range audit {
		evidenceByMethod[ev.Method] = ev
	}

	for _, m := range g.auditMethods {
		if !hasSevereCondition(m, g.severityThreshold) {
			flag := "under-specified-veto:" + m.ID()
			outcome.Flags = append(outcome.Flags, flag)
			g.log.Warn("audit method has no severe veto condition",
				"item", g.itemID, "method", m.ID(), "threshold", g.severityThreshold)
		}

		ev, hasEvidence := evidenceByMethod[m.ID()]

		// Condition names sorted for deterministic evaluation order.
		names := make([]string, 0, len(m.Vetoes))
		for name := range m.Vetoes {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			vc := m.Vetoes[name]
			if !triggers(vc.Trigger, statements, ev, hasEvidence) {
				continue
			}

			outcome.ConfidenceMultiplier *= vc.ConfidenceMultiplier
			outcome.Triggered = append(outcome.Triggered, fusion.TriggeredVeto{
				Method:     m.ID(),
				Condition:  name,
				Action:     vc.Action,
				Multiplier: vc.ConfidenceMultiplier,
			})

			switch vc.Action {
			case catalog.ActionBlock, catalog.ActionInvalidate:
				outcome.Blocked = true
				if vc.Action == catalog.ActionInvalidate {
					outcome.SuppressedScopes = append(outcome.SuppressedScopes, vc.Scope)
				}
			case catalog.ActionSuppress:
				outcome.SuppressedScopes = append(outcome.SuppressedScopes, vc.Scope)
			case catalog.ActionFlag:
				outcome.Flags = append(outcome.Flags, name)
			case catalog.ActionReduceConfidence:
				// Multiplier already applied above.
			default:
				return fusion.GateOutcome{}, fmt.Errorf(
					"item %s method %s veto %q: unknown action %q",
					g.itemID, m.ID(), name, vc.Action)
			}

			g.log.Debug("veto condition triggered",
				"item", g.itemID, "method", m.ID(), "condition", name,
				"action", string(vc.Action), "multiplier", vc.ConfidenceMultiplier)
		}
	}

	return outcome, nil
}

// triggers reports whether the trigger phrase matches the accumulated
// evidence: a case-insensitive substring of any fact statement, or of the
// audit method's own evidence statement.
func triggers(trigger string, statements []string, ev fusion.EvidenceItem, hasEvidence bool) bool {
	needle := strings.ToLower(strings.TrimSpace(trigger))
	if needle == "" {
		return false
	}
	for _, s := range statements {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	if hasEvidence && strings.Contains(strings.ToLower(ev.Statement), needle) {
		return true
	}
	return false
}

func hasSevereCondition(m catalog.Method, threshold float64) bool {
	for _, vc := range m.Vetoes {
		if vc.ConfidenceMultiplier <= threshold {
			return true
		}
	}
	return false
}

// CheckAsymmetry rejects chains where an empirical or inferential method
// declares a requires/modifies/modulates edge onto an audit method. The
// forward direction (audit judging lower levels) is the only legal one.
func CheckAsymmetry(ec *chain.EpistemicChain) error {
	auditIDs := make(map[string]bool)
	for _, m := range ec.Audit() {
		auditIDs[m.ID()] = true
	}

	check := func(m catalog.Method) error {
		for _, refs := range [][]string{m.Requires, m.Modifies, m.Modulates} {
			for _, ref := range refs {
				if auditIDs[ref] {
					return fmt.Errorf("%w: item %s method %s (level %s) references audit method %s",
						ErrAsymmetry, ec.ItemID(), m.ID(), m.Level, ref)
				}
			}
		}
		return nil
	}

	for _, m := range ec.Empirical() {
		if err := check(m); err != nil {
			return err
		}
	}
	for _, m := range ec.Inferential() {
		if err := check(m); err != nil {
			return err
		}
	}
	return nil
}
