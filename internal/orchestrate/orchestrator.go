package orchestrate

import (
	"fmt"
	"log/slog"

	"tribunal/internal/catalog"
	"tribunal/internal/config"
	"tribunal/internal/logging"
)

// Orchestrator routes catalog items onto the chunk matrix and builds the
// deterministic execution plan. It owns the per-run routing cache.
type Orchestrator struct {
	cat    *catalog.Catalog
	matrix *ChunkMatrix
	cfg    config.Config
	cache  *routeCache
	log    *slog.Logger
}

// New wires an orchestrator for one run.
func New(cat *catalog.Catalog, matrix *ChunkMatrix, cfg config.Config) *Orchestrator {
	return &Orchestrator{
		cat:    cat,
		matrix: matrix,
		cfg:    cfg,
		cache:  newRouteCache(),
		log:    logging.New("orchestrate"),
	}
}

// BuildPlan builds one Task per catalog item by routing the item's
// (policy area, dimension) pair to the unique matching chunk. Items routing
// nowhere are fatal. The returned plan is canonically sorted and
// content-addressed; building it twice from the same catalog and matrix
// yields identical identifiers.
func (o *Orchestrator) BuildPlan() (*ExecutionPlan, error) {
	tasks := make([]Task, 0, len(o.cat.Items))
	for i := range o.cat.Items {
		im := &o.cat.Items[i]

		chunk, ok := o.matrix.Chunk(im.PolicyArea, im.Dimension)
		if !ok {
			return nil, fmt.Errorf("%w: item %s targets (area %d, dimension %d)",
				ErrRouting, im.ItemID, im.PolicyArea, im.Dimension)
		}

		meta := o.cache.get(im.ItemID, func() routeMeta {
			return routeMeta{
				taskID:   TaskID(im.ItemID, im.PolicyArea),
				chunkKey: chunk.Key(),
			}
		})

		tasks = append(tasks, Task{
			ID:         meta.taskID,
			ItemID:     im.ItemID,
			PolicyArea: im.PolicyArea,
			Dimension:  im.Dimension,
			ChunkKey:   meta.chunkKey,
		})
	}

	plan := NewPlan(tasks)
	o.log.Info("execution plan built",
		"plan_id", plan.ID(),
		"tasks", plan.Len(),
		"matrix_hash", o.matrix.IntegrityHash())
	return plan, nil
}
