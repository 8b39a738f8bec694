package display

import (
	"testing"

	"tribunal/internal/aggregate"
	"tribunal/internal/catalog"
)

func TestKnownCodes(t *testing.T) {
	if got := Level(catalog.LevelAudit); got != "Audit / Veto" {
		t.Errorf("Level(AUDIT) = %q", got)
	}
	if got := Phase(catalog.PhaseLitigation); got != "Litigation" {
		t.Errorf("Phase(litigation) = %q", got)
	}
	if got := Action(catalog.ActionReduceConfidence); got != "Reduce Confidence" {
		t.Errorf("Action(reduce-confidence) = %q", got)
	}
	if got := Quality(aggregate.QualityBlocked); got != "Blocked by Veto" {
		t.Errorf("Quality(blocked) = %q", got)
	}
	if got := QualityWithCode(aggregate.QualityGood); got != "Good (good)" {
		t.Errorf("QualityWithCode(good) = %q", got)
	}
	if got := Layer(aggregate.LayerMacro); got != "Overall" {
		t.Errorf("Layer(macro) = %q", got)
	}
}

func TestUnknownCodesPassThrough(t *testing.T) {
	if got := Level("MYSTICAL"); got != "MYSTICAL" {
		t.Errorf("unknown level = %q, want pass-through", got)
	}
	if got := Quality("odd"); got != "odd" {
		t.Errorf("unknown quality = %q, want pass-through", got)
	}
}
