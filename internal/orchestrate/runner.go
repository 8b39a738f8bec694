package orchestrate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tribunal/internal/aggregate"
	"tribunal/internal/chain"
	"tribunal/internal/fusion"
	"tribunal/internal/veto"
)

// SignalResolver resolves required signal identifiers against a chunk. It is
// an external collaborator; failures here are non-fatal and degrade the item
// to "no signals available".
type SignalResolver interface {
	Resolve(ctx context.Context, chunk Chunk, signals []string) (map[string]float64, error)
}

// EvidenceProducer executes a composed chain against chunk text and returns
// one evidence item per executed method, in chain order. The fusion engine
// re-validates type tags regardless.
type EvidenceProducer interface {
	Execute(ctx context.Context, ec *chain.EpistemicChain, chunk Chunk, signals map[string]float64) ([]fusion.EvidenceItem, error)
}

// RunResult is the full emitted artifact set of one run: the plan, the five
// scored-result layers, and per-item diagnostics.
type RunResult struct {
	Plan    *ExecutionPlan
	Pyramid *aggregate.Pyramid

	// Fused holds the per-item evidence syntheses, in plan task order.
	// Invalid items have a nil entry.
	Fused []*fusion.Fused

	// InvalidItems lists items that failed closed (evidence-type errors,
	// producer failures) and entered aggregation as blocked zeroes.
	InvalidItems []string
}

// Run executes the full pipeline: plan, per-item chain composition, evidence
// production, fusion and veto, then the four aggregation stages.
//
// Items are independent; they run on an errgroup pool sized by the
// configured worker count (0 = serial). The 300→60 stage is a barrier: it
// starts only after every item has a result. Coherence violations (composer
// failures, asymmetric chains) abort the run; evidence-type failures fail
// closed per item and enter aggregation as blocked zero-confidence results.
func (o *Orchestrator) Run(ctx context.Context, resolver SignalResolver, producer EvidenceProducer) (*RunResult, error) {
	plan, err := o.BuildPlan()
	if err != nil {
		return nil, err
	}

	tasks := plan.Tasks()
	engine := fusion.NewEngine(o.cfg)

	items := make([]aggregate.ScoredResult, len(tasks))
	fused := make([]*fusion.Fused, len(tasks))
	invalid := make([]string, 0)

	workers := o.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	type itemFailure struct {
		item string
		err  error
	}
	failures := make(chan itemFailure, len(tasks))

	for i, task := range tasks {
		g.Go(func() error {
			im, ok := o.cat.Item(task.ItemID)
			if !ok {
				return fmt.Errorf("%w: task %s references unknown item %s",
					ErrRouting, task.ID, task.ItemID)
			}

			ec, err := chain.Composer{}.Compose(im)
			if err != nil {
				// Coherence violation: data-authoring defect, fatal.
				return err
			}
			if err := veto.CheckAsymmetry(ec); err != nil {
				return err
			}

			chunk, _ := o.matrix.Chunk(task.PolicyArea, task.Dimension)

			var signals map[string]float64
			if resolver != nil && len(ec.Dependencies()) > 0 {
				signals, err = resolver.Resolve(gctx, chunk, ec.Dependencies())
				if err != nil {
					o.log.Warn("signal resolution failed, continuing without signals",
						"item", task.ItemID, "error", err)
					signals = nil
				}
			}

			result, err := o.runItem(gctx, engine, ec, chunk, signals, producer)
			if err != nil {
				// Evidence-level failure: fail closed for this item only.
				failures <- itemFailure{item: task.ItemID, err: err}
				items[i] = blockedItem(task)
				return nil
			}

			fused[i] = result
			items[i] = aggregate.ScoredResult{
				Layer:      aggregate.LayerItem,
				Key:        task.ItemID,
				PolicyArea: task.PolicyArea,
				Dimension:  task.Dimension,
				Score:      result.Score,
				Confidence: result.Confidence,
				Quality:    aggregate.QualityFor(result.Score, result.Confidence, result.Blocked),
				Blocked:    result.Blocked,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(failures)
	for f := range failures {
		o.log.Warn("item failed closed, excluded as blocked zero",
			"item", f.item, "error", f.err)
		invalid = append(invalid, f.item)
	}

	// Barrier: every item has a result before the first aggregation stage.
	pyramid, err := aggregate.New(o.cfg).Aggregate(items)
	if err != nil {
		return nil, err
	}

	return &RunResult{
		Plan:         plan,
		Pyramid:      pyramid,
		Fused:        fused,
		InvalidItems: invalid,
	}, nil
}

// runItem drives one item through production, fusion, and the veto gate.
func (o *Orchestrator) runItem(ctx context.Context, engine *fusion.Engine, ec *chain.EpistemicChain,
	chunk Chunk, signals map[string]float64, producer EvidenceProducer) (*fusion.Fused, error) {

	evidence, err := producer.Execute(ctx, ec, chunk, signals)
	if err != nil {
		return nil, fmt.Errorf("produce evidence: %w", err)
	}

	gate := veto.NewGate(ec, o.cfg.VetoSeverityThreshold)
	return engine.Fuse(ec, evidence, gate)
}

// blockedItem is the fail-closed stand-in for an invalid item: zero score,
// zero confidence, blocked. It keeps the aggregation cardinality intact
// while guaranteeing the item cannot raise any parent score.
func blockedItem(task Task) aggregate.ScoredResult {
	return aggregate.ScoredResult{
		Layer:      aggregate.LayerItem,
		Key:        task.ItemID,
		PolicyArea: task.PolicyArea,
		Dimension:  task.Dimension,
		Score:      0,
		Confidence: 0,
		Quality:    aggregate.QualityBlocked,
		Blocked:    true,
	}
}
