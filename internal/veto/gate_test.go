package veto

import (
	"errors"
	"strings"
	"testing"

	"tribunal/internal/catalog"
	"tribunal/internal/chain"
	"tribunal/internal/fusion"
)

func auditMethod(class, name string, vetoes map[string]catalog.VetoCondition) catalog.Method {
	return catalog.Method{
		ClassName:      class,
		MethodName:     name,
		Level:          catalog.LevelAudit,
		OutputType:     catalog.OutputConstraint,
		FusionBehavior: catalog.FusionGate,
		Vetoes:         vetoes,
	}
}

func lowerMethod(class, name string, level catalog.Level) catalog.Method {
	ot, _ := catalog.OutputTypeForLevel(level)
	fb, _ := catalog.BehaviorForOutputType(ot)
	return catalog.Method{
		ClassName: class, MethodName: name,
		Level: level, OutputType: ot, FusionBehavior: fb,
	}
}

func gateChain(t *testing.T, audit ...catalog.Method) *chain.EpistemicChain {
	t.Helper()
	ec, err := chain.Composer{}.Compose(&catalog.ItemMethods{
		ItemID:       "Q100",
		PolicyArea:   5,
		Dimension:    1,
		Construction: []catalog.Method{lowerMethod("E", "scan", catalog.LevelEmpirical)},
		Litigation:   audit,
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	return ec
}

func graphWith(statements ...string) *fusion.Graph {
	g := fusion.NewGraph("Q100", 0.1, 3.0)
	for _, s := range statements {
		g.AddFact(fusion.EvidenceItem{
			Method: "E.scan", Level: catalog.LevelEmpirical,
			Type: catalog.OutputFact, Statement: s, Value: 0.5, Confidence: 1,
		})
	}
	return g
}

func TestEvaluate_TriggerMatchesGraphStatement(t *testing.T) {
	m := auditMethod("A", "check", map[string]catalog.VetoCondition{
		"contradiction": {
			Trigger: "mutually exclusive", Action: catalog.ActionBlock,
			Scope: "item", ConfidenceMultiplier: 0.0,
		},
	})
	g := NewGate(gateChain(t, m), 0.5)

	outcome, err := g.Evaluate(nil, graphWith("clauses are Mutually Exclusive here"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !outcome.Blocked {
		t.Error("block action should set Blocked")
	}
	if outcome.ConfidenceMultiplier != 0.0 {
		t.Errorf("ConfidenceMultiplier = %v, want 0", outcome.ConfidenceMultiplier)
	}
	if len(outcome.Triggered) != 1 || outcome.Triggered[0].Condition != "contradiction" {
		t.Errorf("Triggered = %+v", outcome.Triggered)
	}
}

func TestEvaluate_TriggerMatchesAuditStatement(t *testing.T) {
	m := auditMethod("A", "check", map[string]catalog.VetoCondition{
		"stale": {
			Trigger: "outdated source", Action: catalog.ActionReduceConfidence,
			Scope: "item", ConfidenceMultiplier: 0.4,
		},
	})
	g := NewGate(gateChain(t, m), 0.5)

	audit := []fusion.EvidenceItem{{
		Method: "A.check", Level: catalog.LevelAudit, Type: catalog.OutputConstraint,
		Statement: "citation relies on outdated source", Confidence: 1,
	}}
	outcome, err := g.Evaluate(audit, graphWith("benign fact"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if outcome.Blocked {
		t.Error("reduce-confidence must not block")
	}
	if outcome.ConfidenceMultiplier != 0.4 {
		t.Errorf("ConfidenceMultiplier = %v, want 0.4", outcome.ConfidenceMultiplier)
	}
}

func TestEvaluate_MultipliersCompound(t *testing.T) {
	m := auditMethod("A", "check", map[string]catalog.VetoCondition{
		"a": {Trigger: "gap one", Action: catalog.ActionReduceConfidence, ConfidenceMultiplier: 0.5},
		"b": {Trigger: "gap two", Action: catalog.ActionReduceConfidence, ConfidenceMultiplier: 0.5},
	})
	g := NewGate(gateChain(t, m), 0.5)

	outcome, err := g.Evaluate(nil, graphWith("gap one observed", "gap two observed"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if outcome.ConfidenceMultiplier != 0.25 {
		t.Errorf("ConfidenceMultiplier = %v, want 0.25", outcome.ConfidenceMultiplier)
	}
	if len(outcome.Triggered) != 2 {
		t.Fatalf("Triggered = %+v, want 2", outcome.Triggered)
	}
	// Sorted condition names give deterministic trigger order.
	if outcome.Triggered[0].Condition != "a" || outcome.Triggered[1].Condition != "b" {
		t.Errorf("trigger order = %s, %s", outcome.Triggered[0].Condition, outcome.Triggered[1].Condition)
	}
}

func TestEvaluate_SuppressAndInvalidateScopes(t *testing.T) {
	m := auditMethod("A", "check", map[string]catalog.VetoCondition{
		"weak": {Trigger: "hearsay", Action: catalog.ActionSuppress,
			Scope: "E.scan", ConfidenceMultiplier: 0.3},
	})
	g := NewGate(gateChain(t, m), 0.5)

	outcome, err := g.Evaluate(nil, graphWith("claim based on hearsay"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if outcome.Blocked {
		t.Error("suppress must not block")
	}
	if len(outcome.SuppressedScopes) != 1 || outcome.SuppressedScopes[0] != "E.scan" {
		t.Errorf("SuppressedScopes = %v", outcome.SuppressedScopes)
	}
}

func TestEvaluate_UnderSpecifiedFlaggedNotRejected(t *testing.T) {
	// No condition at or below the 0.5 severity threshold.
	m := auditMethod("A", "check", map[string]catalog.VetoCondition{
		"mild": {Trigger: "nit", Action: catalog.ActionFlag, ConfidenceMultiplier: 0.9},
	})
	g := NewGate(gateChain(t, m), 0.5)

	outcome, err := g.Evaluate(nil, graphWith("fine"))
	if err != nil {
		t.Fatalf("under-specified chains must not be rejected: %v", err)
	}

	found := false
	for _, f := range outcome.Flags {
		if strings.HasPrefix(f, "under-specified-veto:") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected under-specified flag, got %v", outcome.Flags)
	}
}

func TestEvaluate_NoTriggerPassesThrough(t *testing.T) {
	m := auditMethod("A", "check", map[string]catalog.VetoCondition{
		"contradiction": {Trigger: "mutually exclusive", Action: catalog.ActionBlock,
			ConfidenceMultiplier: 0.0},
	})
	g := NewGate(gateChain(t, m), 0.5)

	outcome, err := g.Evaluate(nil, graphWith("perfectly coherent facts"))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if outcome.Blocked || outcome.ConfidenceMultiplier != 1.0 || len(outcome.Triggered) != 0 {
		t.Errorf("pass-through outcome = %+v", outcome)
	}
}

func TestCheckAsymmetry(t *testing.T) {
	empirical := lowerMethod("E", "scan", catalog.LevelEmpirical)
	inferential := lowerMethod("I", "scale", catalog.LevelInferential)
	audit := auditMethod("A", "check", map[string]catalog.VetoCondition{
		"v": {Trigger: "t", Action: catalog.ActionBlock, ConfidenceMultiplier: 0.0},
	})
	// Forward edge: audit depends on lower output. Legal.
	audit.Requires = []string{"E.scan"}

	legal, err := chain.Composer{}.Compose(&catalog.ItemMethods{
		ItemID: "Q1", PolicyArea: 1, Dimension: 1,
		Construction: []catalog.Method{empirical},
		Computation:  []catalog.Method{inferential},
		Litigation:   []catalog.Method{audit},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if err := CheckAsymmetry(legal); err != nil {
		t.Errorf("forward edge rejected: %v", err)
	}

	// Reverse edge: inferential modulates audit output. Forbidden.
	inferential.Modulates = []string{"A.check"}
	illegal, err := chain.Composer{}.Compose(&catalog.ItemMethods{
		ItemID: "Q2", PolicyArea: 1, Dimension: 1,
		Construction: []catalog.Method{empirical},
		Computation:  []catalog.Method{inferential},
		Litigation:   []catalog.Method{audit},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	err = CheckAsymmetry(illegal)
	if !errors.Is(err, ErrAsymmetry) {
		t.Fatalf("expected ErrAsymmetry, got %v", err)
	}
	if !strings.Contains(err.Error(), "I.scale") || !strings.Contains(err.Error(), "A.check") {
		t.Errorf("diagnostic %q should name both ends of the reverse edge", err)
	}
}
