package aggregate

import (
	"errors"
	"math"
	"testing"

	"tribunal/internal/config"
)

// uniformItems builds the full 300-item input: 10 areas × 6 dimensions × 5
// items each, all with the given score and confidence 1.
func uniformItems(score float64) []ScoredResult {
	var items []ScoredResult
	for area := 1; area <= 10; area++ {
		for dim := 1; dim <= 6; dim++ {
			for i := 0; i < 5; i++ {
				items = append(items, ScoredResult{
					Layer:      LayerItem,
					Key:        itemKey(area, dim, i),
					PolicyArea: area,
					Dimension:  dim,
					Score:      score,
					Confidence: 1,
					Quality:    QualityFor(score, 1, false),
				})
			}
		}
	}
	return items
}

func itemKey(area, dim, i int) string {
	return DimensionKey(area, dim) + "/item" + string(rune('A'+i))
}

func TestAggregate_UniformRun(t *testing.T) {
	agg := New(config.Default())
	p, err := agg.Aggregate(uniformItems(0.8))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if len(p.Dimensions) != ExpectedDimensions {
		t.Fatalf("dimensions = %d, want %d", len(p.Dimensions), ExpectedDimensions)
	}
	if len(p.Areas) != ExpectedAreas {
		t.Fatalf("areas = %d, want %d", len(p.Areas), ExpectedAreas)
	}
	if len(p.Clusters) != ExpectedClusters {
		t.Fatalf("clusters = %d, want %d", len(p.Clusters), ExpectedClusters)
	}

	// Identical children: zero variance, penalty 1, every layer's score is
	// the plain weighted mean.
	for _, d := range p.Dimensions {
		if math.Abs(d.Score-0.8) > 1e-9 {
			t.Fatalf("dimension %s score = %v, want 0.8", d.Key, d.Score)
		}
		if d.Diagnostics.ChildCount != 5 {
			t.Fatalf("dimension %s child count = %d, want 5", d.Key, d.Diagnostics.ChildCount)
		}
		if d.Diagnostics.PenaltyApplied != 1 {
			t.Fatalf("dimension %s penalty = %v, want 1", d.Key, d.Diagnostics.PenaltyApplied)
		}
	}
	if math.Abs(p.Macro.Score-0.8) > 1e-9 {
		t.Errorf("macro score = %v, want 0.8", p.Macro.Score)
	}
	if p.Macro.Blocked {
		t.Error("no veto triggers: macro must not be blocked")
	}
	if p.Macro.Quality != QualityGood {
		t.Errorf("macro quality = %s, want %s", p.Macro.Quality, QualityGood)
	}
}

func TestAggregate_InputCardinality(t *testing.T) {
	agg := New(config.Default())

	_, err := agg.Aggregate(uniformItems(0.5)[:299])
	if !errors.Is(err, ErrCardinality) {
		t.Fatalf("299 items: expected ErrCardinality, got %v", err)
	}
}

func TestAggregate_GroupCardinality(t *testing.T) {
	agg := New(config.Default())

	// Re-route one whole dimension's items into a neighboring dimension:
	// still 300 items, but only 59 dimension groups.
	items := uniformItems(0.5)
	for i := range items {
		if items[i].PolicyArea == 1 && items[i].Dimension == 6 {
			items[i].Dimension = 5
		}
	}

	_, err := agg.Aggregate(items)
	if !errors.Is(err, ErrCardinality) {
		t.Fatalf("59 groups: expected ErrCardinality, got %v", err)
	}
}

func TestAggregate_RejectsWrongLayer(t *testing.T) {
	agg := New(config.Default())
	items := uniformItems(0.5)
	items[17].Layer = LayerDimension

	_, err := agg.Aggregate(items)
	if !errors.Is(err, ErrInput) {
		t.Fatalf("expected ErrInput for wrong input layer, got %v", err)
	}
	if errors.Is(err, ErrCardinality) {
		t.Error("wrong-layer input must not read as a cardinality mismatch")
	}
}

func TestAggregate_BlockedPropagationIsMonotone(t *testing.T) {
	agg := New(config.Default())

	// One item under area 3 / dimension 2 is vetoed with multiplier 0.
	items := uniformItems(0.6)
	for i := range items {
		if items[i].PolicyArea == 3 && items[i].Dimension == 2 {
			items[i].Blocked = true
			items[i].Confidence = 0
			items[i].Quality = QualityBlocked
			break
		}
	}

	p, err := agg.Aggregate(items)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	var dim, area, cluster *ScoredResult
	for i := range p.Dimensions {
		if p.Dimensions[i].Key == DimensionKey(3, 2) {
			dim = &p.Dimensions[i]
		}
	}
	for i := range p.Areas {
		if p.Areas[i].Key == AreaKey(3) {
			area = &p.Areas[i]
		}
	}
	for i := range p.Clusters {
		if p.Clusters[i].Cluster == DefaultClusterMap()[3] {
			cluster = &p.Clusters[i]
		}
	}
	if dim == nil || area == nil || cluster == nil {
		t.Fatal("expected dimension/area/cluster results not found")
	}

	if !dim.Blocked || !area.Blocked || !cluster.Blocked || !p.Macro.Blocked {
		t.Errorf("blocked flags: dim=%v area=%v cluster=%v macro=%v, all want true",
			dim.Blocked, area.Blocked, cluster.Blocked, p.Macro.Blocked)
	}
	if dim.Diagnostics.BlockedChildren != 1 {
		t.Errorf("blocked children = %d, want 1", dim.Diagnostics.BlockedChildren)
	}

	// The blocked item is excluded from the mean: remaining four identical
	// children keep the dimension score at 0.6.
	if math.Abs(dim.Score-0.6) > 1e-9 {
		t.Errorf("dimension score = %v, want 0.6 (blocked child excluded)", dim.Score)
	}
	if dim.Quality != QualityBlocked {
		t.Errorf("dimension quality = %s, want %s", dim.Quality, QualityBlocked)
	}

	// Siblings of the blocked branch stay unblocked.
	for _, d := range p.Dimensions {
		if d.Key != DimensionKey(3, 2) && d.Blocked {
			t.Errorf("sibling dimension %s unexpectedly blocked", d.Key)
		}
	}
}

func TestAggregate_DispersionPenalty(t *testing.T) {
	cfg := config.Default()
	cfg.DispersionWeight = 0.5
	agg := New(cfg)

	// Area 1 / dimension 1 gets maximally spread children (0 and 1).
	items := uniformItems(0.5)
	idx := 0
	for i := range items {
		if items[i].PolicyArea == 1 && items[i].Dimension == 1 {
			if idx%2 == 0 {
				items[i].Score = 0
			} else {
				items[i].Score = 1
			}
			idx++
		}
	}

	p, err := agg.Aggregate(items)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	var dim *ScoredResult
	for i := range p.Dimensions {
		if p.Dimensions[i].Key == DimensionKey(1, 1) {
			dim = &p.Dimensions[i]
		}
	}
	if dim == nil {
		t.Fatal("dimension area01/dim1 not found")
	}

	// Children 0,1,0,1,0: mean 0.4, std = sqrt(0.24) ≈ 0.4899,
	// stdNorm ≈ 0.9798, penalty = 1 - 0.5*0.9798 ≈ 0.5101.
	wantMean := 0.4
	wantStd := math.Sqrt(0.24)
	wantPenalty := 1 - 0.5*(wantStd/0.5)
	wantScore := wantMean * wantPenalty

	if math.Abs(dim.Score-wantScore) > 1e-9 {
		t.Errorf("dimension score = %v, want %v", dim.Score, wantScore)
	}
	if math.Abs(dim.Diagnostics.PenaltyApplied-wantPenalty) > 1e-9 {
		t.Errorf("penalty = %v, want %v", dim.Diagnostics.PenaltyApplied, wantPenalty)
	}
	if dim.Diagnostics.Coherence >= 1 {
		t.Errorf("coherence = %v, want < 1 for spread children", dim.Diagnostics.Coherence)
	}
}

func TestQualityFor(t *testing.T) {
	cases := []struct {
		score, conf float64
		blocked     bool
		want        Quality
	}{
		{0.9, 0.9, false, QualityExcellent},
		{0.7, 0.9, false, QualityGood},
		{0.5, 0.9, false, QualityFair},
		{0.2, 0.9, false, QualityPoor},
		{0.9, 0.1, false, QualityPoor},
		{0.95, 0.95, true, QualityBlocked},
	}
	for _, tc := range cases {
		if got := QualityFor(tc.score, tc.conf, tc.blocked); got != tc.want {
			t.Errorf("QualityFor(%v, %v, %v) = %s, want %s",
				tc.score, tc.conf, tc.blocked, got, tc.want)
		}
	}
}
