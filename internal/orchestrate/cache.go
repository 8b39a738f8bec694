package orchestrate

import "sync"

// routeMeta is the per-item routing metadata derived once per run.
type routeMeta struct {
	taskID   string
	chunkKey string
}

// routeCache is the only shared mutable state in the core: a per-run cache
// of routing metadata keyed by item ID. It is owned exclusively by the
// orchestrator and guarded for the parallel execution path.
type routeCache struct {
	mu sync.Mutex
	m  map[string]routeMeta
}

func newRouteCache() *routeCache {
	return &routeCache{m: make(map[string]routeMeta)}
}

// get returns the cached metadata for itemID, deriving and storing it via
// derive on first use.
func (c *routeCache) get(itemID string, derive func() routeMeta) routeMeta {
	c.mu.Lock()
	defer c.mu.Unlock()
	if meta, ok := c.m[itemID]; ok {
		return meta
	}
	meta := derive()
	c.m[itemID] = meta
	return meta
}

func (c *routeCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
