package chain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tribunal/internal/catalog"
)

func method(class, name string, level catalog.Level) catalog.Method {
	ot, _ := catalog.OutputTypeForLevel(level)
	fb, _ := catalog.BehaviorForOutputType(ot)
	m := catalog.Method{
		ClassName:      class,
		MethodName:     name,
		Level:          level,
		OutputType:     ot,
		FusionBehavior: fb,
	}
	if level == catalog.LevelAudit {
		m.Vetoes = map[string]catalog.VetoCondition{
			"v": {Trigger: "t", Action: catalog.ActionBlock, ConfidenceMultiplier: 0.2},
		}
	}
	return m
}

func testItem() *catalog.ItemMethods {
	return &catalog.ItemMethods{
		ItemID:     "Q042",
		PolicyArea: 4,
		Dimension:  2,
		Construction: []catalog.Method{
			method("Extractor", "scan_clauses", catalog.LevelEmpirical),
			method("Extractor", "scan_actors", catalog.LevelEmpirical),
		},
		Computation: []catalog.Method{
			method("Scaler", "weight_coverage", catalog.LevelInferential),
		},
		Litigation: []catalog.Method{
			method("Auditor", "cross_check", catalog.LevelAudit),
		},
		DeclaredMethodCount: 4,
		EfficiencyScore:     0.73,
		OutputTarget:        "q042_synthesis",
	}
}

func TestCompose_PreservesOrderAndCounts(t *testing.T) {
	im := testItem()
	c, err := Composer{}.Compose(im)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	if c.Len() != 4 {
		t.Errorf("Len = %d, want 4", c.Len())
	}
	if got := len(c.Empirical()) + len(c.Inferential()) + len(c.Audit()); got != im.DeclaredMethodCount {
		t.Errorf("phase sum = %d, want declared %d", got, im.DeclaredMethodCount)
	}

	wantOrder := []string{
		"Extractor.scan_clauses",
		"Extractor.scan_actors",
		"Scaler.weight_coverage",
		"Auditor.cross_check",
	}
	var gotOrder []string
	for _, m := range c.Methods() {
		gotOrder = append(gotOrder, m.ID())
	}
	if diff := cmp.Diff(wantOrder, gotOrder); diff != "" {
		t.Errorf("method order mismatch (-want +got):\n%s", diff)
	}

	if c.EfficiencyScore() != 0.73 {
		t.Errorf("EfficiencyScore = %v, want 0.73 (pass-through)", c.EfficiencyScore())
	}
	if c.OutputTarget() != "q042_synthesis" {
		t.Errorf("OutputTarget = %q", c.OutputTarget())
	}
}

func TestCompose_LevelPhaseMismatchIsCoherenceError(t *testing.T) {
	im := testItem()
	// An audit method authored into the construction phase.
	im.Construction = append(im.Construction, method("Auditor", "stray", catalog.LevelAudit))
	im.DeclaredMethodCount++

	_, err := Composer{}.Compose(im)
	if !errors.Is(err, ErrCoherence) {
		t.Fatalf("expected ErrCoherence, got %v", err)
	}
	for _, sub := range []string{"Auditor.stray", "construction", "litigation"} {
		if !strings.Contains(err.Error(), sub) {
			t.Errorf("diagnostic %q does not mention %q", err, sub)
		}
	}
}

func TestCompose_DeclaredCountMismatchIsCoherenceError(t *testing.T) {
	im := testItem()
	im.DeclaredMethodCount = 7

	_, err := Composer{}.Compose(im)
	if !errors.Is(err, ErrCoherence) {
		t.Fatalf("expected ErrCoherence, got %v", err)
	}
	if errors.Is(err, ErrInternal) {
		t.Error("declared-count mismatch must not be classified as internal")
	}
}

func TestCompose_UnknownLevelIsCoherenceError(t *testing.T) {
	im := testItem()
	im.Computation[0].Level = "ORACULAR"

	_, err := Composer{}.Compose(im)
	if !errors.Is(err, ErrCoherence) {
		t.Fatalf("expected ErrCoherence, got %v", err)
	}
}

func TestChain_AccessorsReturnCopies(t *testing.T) {
	c, err := Composer{}.Compose(testItem())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	emp := c.Empirical()
	emp[0].MethodName = "tampered"

	if c.Empirical()[0].MethodName == "tampered" {
		t.Error("mutating an accessor result leaked into the chain")
	}
}

func TestCompose_DependencySetSortedUnion(t *testing.T) {
	im := testItem()
	im.Computation[0].Modulates = []string{"Extractor.scan_clauses"}
	im.Litigation[0].Requires = []string{"Scaler.weight_coverage", "Extractor.scan_clauses"}

	c, err := Composer{}.Compose(im)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	want := []string{"Extractor.scan_clauses", "Scaler.weight_coverage"}
	if diff := cmp.Diff(want, c.Dependencies()); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestEpistemology_LabelsPerPhase(t *testing.T) {
	cases := []struct {
		phase catalog.Phase
		want  string
	}{
		{catalog.PhaseConstruction, EpistemologyEmpirical},
		{catalog.PhaseComputation, EpistemologyInferential},
		{catalog.PhaseLitigation, EpistemologyAudit},
		{"unknown", ""},
	}
	for _, tc := range cases {
		if got := Epistemology(tc.phase); got != tc.want {
			t.Errorf("Epistemology(%s) = %q, want %q", tc.phase, got, tc.want)
		}
	}
}
