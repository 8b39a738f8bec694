package fusion

import (
	"fmt"
	"slices"
	"strings"
)

// FactNode is one empirical finding in the evidence graph. Facts are
// independent: no two nodes are ever merged or overwritten.
type FactNode struct {
	ID         string
	Method     string
	Statement  string
	Strength   float64
	Confidence float64
	Suppressed bool
}

// WeightEdge records one multiplicative modification applied by an
// inferential method to the graph's running weight.
type WeightEdge struct {
	From    string   // inferential method identity
	Targets []string // modulated outputs, empty = whole graph
	Factor  float64
	Clamped bool // true when this application hit a clamp bound
}

// Graph is the per-item evidence graph: fact nodes, weight edges, and the
// clamped running multiplicative weight. It is owned by a single item's
// fusion pass and never shared.
type Graph struct {
	itemID   string
	nodes    []FactNode
	edges    []WeightEdge
	weight   float64
	clampMin float64
	clampMax float64
}

// NewGraph creates an empty graph with running weight 1 and the configured
// clamp bounds for multiplicative fusion.
func NewGraph(itemID string, clampMin, clampMax float64) *Graph {
	return &Graph{
		itemID:   itemID,
		weight:   1.0,
		clampMin: clampMin,
		clampMax: clampMax,
	}
}

func (g *Graph) ItemID() string      { return g.itemID }
func (g *Graph) Weight() float64     { return g.weight }
func (g *Graph) Nodes() []FactNode   { return slices.Clone(g.nodes) }
func (g *Graph) Edges() []WeightEdge { return slices.Clone(g.edges) }

// AddFact inserts one empirical evidence item as an independent node.
// Duplicate statements still get their own node; facts never merge.
func (g *Graph) AddFact(e EvidenceItem) {
	g.nodes = append(g.nodes, FactNode{
		ID:         fmt.Sprintf("%s#%d", e.Method, len(g.nodes)),
		Method:     e.Method,
		Statement:  e.Statement,
		Strength:   e.Value,
		Confidence: e.Confidence,
	})
}

// ApplyParameter multiplies the running weight by the parameter's factor and
// clamps the result to [clampMin, clampMax]. The bound holds for any chain
// length; it is a hard invariant, not a tunable default.
func (g *Graph) ApplyParameter(e EvidenceItem, targets []string) {
	raw := g.weight * e.Value
	clamped := min(max(raw, g.clampMin), g.clampMax)
	g.edges = append(g.edges, WeightEdge{
		From:    e.Method,
		Targets: slices.Clone(targets),
		Factor:  e.Value,
		Clamped: clamped != raw,
	})
	g.weight = clamped
}

// Suppress marks every node whose method or statement falls in scope.
// Scope "item" (or empty) suppresses all nodes.
func (g *Graph) Suppress(scope string) {
	all := scope == "" || scope == "item"
	for i := range g.nodes {
		if all || g.nodes[i].Method == scope ||
			strings.Contains(strings.ToLower(g.nodes[i].Statement), strings.ToLower(scope)) {
			g.nodes[i].Suppressed = true
		}
	}
}

// ActiveNodes returns the non-suppressed fact nodes.
func (g *Graph) ActiveNodes() []FactNode {
	var out []FactNode
	for _, n := range g.nodes {
		if !n.Suppressed {
			out = append(out, n)
		}
	}
	return out
}

// Statements returns every fact statement, suppressed or not, for trigger
// matching by the gate.
func (g *Graph) Statements() []string {
	out := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.Statement
	}
	return out
}
