package aggregate

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"tribunal/internal/config"
	"tribunal/internal/logging"
)

// Expected cardinalities of the fixed pipeline.
const (
	ExpectedItems      = 300
	ExpectedDimensions = 60
	ExpectedAreas      = 10
	ExpectedClusters   = 4
)

// ErrCardinality is returned when a stage's input or output count diverges
// from the fixed pipeline. It is fatal for the whole run: no score of the
// failing stage is emitted and no partial aggregation is returned.
var ErrCardinality = errors.New("aggregate: cardinality mismatch")

// ErrInput is returned for a malformed input result, such as one tagged
// with the wrong layer. Distinct from ErrCardinality: the count may be
// right while a member is not an item result.
var ErrInput = errors.New("aggregate: malformed input result")

// DefaultClusterMap assigns the ten policy areas to four clusters.
func DefaultClusterMap() map[int]int {
	return map[int]int{
		1: 1, 2: 1, 3: 1,
		4: 2, 5: 2, 6: 2,
		7: 3, 8: 3,
		9: 4, 10: 4,
	}
}

// Pyramid is the complete, immutable output of one aggregation run: every
// layer's ScoredResults in canonical key order.
type Pyramid struct {
	Items      []ScoredResult
	Dimensions []ScoredResult
	Areas      []ScoredResult
	Clusters   []ScoredResult
	Macro      ScoredResult
}

// Layers returns all five result sets, bottom-up, for persistence.
func (p *Pyramid) Layers() [][]ScoredResult {
	return [][]ScoredResult{p.Items, p.Dimensions, p.Areas, p.Clusters, {p.Macro}}
}

// Aggregator folds item results through the four sequential stages. Each
// stage verifies its expected cardinality before emitting anything.
type Aggregator struct {
	cfg       config.Config
	clusterOf map[int]int
	log       *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClusterMap overrides the area→cluster assignment.
func WithClusterMap(m map[int]int) Option {
	return func(a *Aggregator) { a.clusterOf = m }
}

// New returns an aggregator with the configured dispersion weighting.
func New(cfg config.Config, opts ...Option) *Aggregator {
	a := &Aggregator{
		cfg:       cfg,
		clusterOf: DefaultClusterMap(),
		log:       logging.New("aggregate"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate runs all four stages over the 300 item results. Stages are
// strictly sequential; each consumes the prior stage's complete output.
// Veto status is monotone non-decreasing going up: a blocked child can never
// produce a non-blocked parent.
func (a *Aggregator) Aggregate(items []ScoredResult) (*Pyramid, error) {
	if len(items) != ExpectedItems {
		return nil, fmt.Errorf("%w: stage item→dimension expects %d items, got %d",
			ErrCardinality, ExpectedItems, len(items))
	}
	for _, it := range items {
		if it.Layer != LayerItem {
			return nil, fmt.Errorf("%w: input %q has layer %q, want %q",
				ErrInput, it.Key, it.Layer, LayerItem)
		}
	}

	dims, err := a.stage(items, ExpectedDimensions, "item→dimension", func(child ScoredResult) (string, ScoredResult) {
		key := DimensionKey(child.PolicyArea, child.Dimension)
		return key, ScoredResult{
			Layer:      LayerDimension,
			Key:        key,
			PolicyArea: child.PolicyArea,
			Dimension:  child.Dimension,
			Cluster:    a.clusterOf[child.PolicyArea],
		}
	})
	if err != nil {
		return nil, err
	}

	areas, err := a.stage(dims, ExpectedAreas, "dimension→area", func(child ScoredResult) (string, ScoredResult) {
		key := AreaKey(child.PolicyArea)
		return key, ScoredResult{
			Layer:      LayerArea,
			Key:        key,
			PolicyArea: child.PolicyArea,
			Cluster:    a.clusterOf[child.PolicyArea],
		}
	})
	if err != nil {
		return nil, err
	}

	clusters, err := a.stage(areas, ExpectedClusters, "area→cluster", func(child ScoredResult) (string, ScoredResult) {
		cl := a.clusterOf[child.PolicyArea]
		return ClusterKey(cl), ScoredResult{
			Layer:   LayerCluster,
			Key:     ClusterKey(cl),
			Cluster: cl,
		}
	})
	if err != nil {
		return nil, err
	}

	macros, err := a.stage(clusters, 1, "cluster→macro", func(ScoredResult) (string, ScoredResult) {
		return MacroKey, ScoredResult{Layer: LayerMacro, Key: MacroKey}
	})
	if err != nil {
		return nil, err
	}

	p := &Pyramid{
		Items:      items,
		Dimensions: dims,
		Areas:      areas,
		Clusters:   clusters,
		Macro:      macros[0],
	}
	a.log.Info("aggregation complete",
		"macro_score", p.Macro.Score,
		"macro_quality", string(p.Macro.Quality),
		"blocked", p.Macro.Blocked)
	return p, nil
}

// stage groups children by parent key, verifies the expected group count
// before emitting any parent, then scores each group. Parents are returned
// in canonical (sorted) key order.
func (a *Aggregator) stage(children []ScoredResult, expected int, name string,
	parentOf func(ScoredResult) (string, ScoredResult)) ([]ScoredResult, error) {

	groups := make(map[string][]ScoredResult)
	prototypes := make(map[string]ScoredResult)
	for _, c := range children {
		key, proto := parentOf(c)
		groups[key] = append(groups[key], c)
		prototypes[key] = proto
	}

	if len(groups) != expected {
		return nil, fmt.Errorf("%w: stage %s expects %d parent groups, got %d",
			ErrCardinality, name, expected, len(groups))
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parents := make([]ScoredResult, 0, len(keys))
	for _, key := range keys {
		parents = append(parents, a.scoreGroup(prototypes[key], groups[key]))
	}
	return parents, nil
}

// scoreGroup computes one parent from its children: confidence-weighted mean
// of non-blocked child scores, dispersion penalty applied multiplicatively,
// blocked flag as OR over children.
//
// Blocked children contribute zero weight to the mean but still force the
// parent's blocked flag (monotone propagation).
func (a *Aggregator) scoreGroup(parent ScoredResult, children []ScoredResult) ScoredResult {
	var scoreSum, weightSum, confSum float64
	var active []float64
	blocked := false
	blockedChildren := 0

	for _, c := range children {
		confSum += c.Confidence
		if c.Blocked {
			blocked = true
			blockedChildren++
			continue
		}
		scoreSum += c.Score * c.Confidence
		weightSum += c.Confidence
		active = append(active, c.Score)
	}

	var mean float64
	if weightSum > 0 {
		mean = scoreSum / weightSum
	}

	variance := populationVariance(active)
	// Scores live in [0,1]; the maximum possible spread has std 0.5.
	stdNorm := math.Min(math.Sqrt(variance)/0.5, 1)
	coherence := 1 - stdNorm
	penalty := 1 - a.cfg.DispersionWeight*stdNorm

	parent.Score = mean * penalty
	parent.Confidence = confSum / float64(len(children))
	parent.Blocked = blocked
	parent.Quality = QualityFor(parent.Score, parent.Confidence, blocked)
	parent.Diagnostics = Diagnostics{
		ChildCount:      len(children),
		BlockedChildren: blockedChildren,
		Variance:        variance,
		Coherence:       coherence,
		PenaltyApplied:  penalty,
	}
	return parent
}

func populationVariance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return sq / float64(len(xs))
}
