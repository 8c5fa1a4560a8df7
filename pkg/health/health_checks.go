package health

import (
	"context"

	"github.com/dd0wney/cluso-attackpath/pkg/scoring"
)

// EngineState is the part of the scoring engine the checks read
type EngineState interface {
	Stats() scoring.Stats
	EntryPoints() []string
}

// RegisterEngineChecks adds the graph, entry point and cache checks
func RegisterEngineChecks(c *Checker, e EngineState) {
	c.Register("graph", GraphCheck(e))
	c.Register("entry_points", EntryPointCheck(e))
	c.Register("cache", CacheCheck(e))
}

// GraphCheck is unhealthy until a graph is loaded and degraded when it has
// no crown jewels to score against
func GraphCheck(e EngineState) CheckFunc {
	return func(context.Context) Check {
		stats := e.Stats()
		check := Check{
			Name: "graph",
			Details: map[string]any{
				"snapshot":     stats.SnapshotID,
				"nodes":        stats.Nodes,
				"edges":        stats.Edges,
				"crown_jewels": stats.CrownJewels,
			},
		}

		switch {
		case stats.Nodes == 0:
			check.Status = StatusUnhealthy
			check.Message = "No graph loaded"
		case stats.CrownJewels == 0:
			check.Status = StatusDegraded
			check.Message = "No crown jewels"
		default:
			check.Status = StatusHealthy
			check.Message = "Graph loaded"
		}
		return check
	}
}

// EntryPointCheck is degraded when nothing is publicly exposed, since
// every query then returns no paths
func EntryPointCheck(e EngineState) CheckFunc {
	return func(context.Context) Check {
		entries := e.EntryPoints()
		check := Check{
			Name:    "entry_points",
			Details: map[string]any{"count": len(entries)},
		}
		if len(entries) == 0 {
			check.Status = StatusDegraded
			check.Message = "No public entry points"
		} else {
			check.Status = StatusHealthy
			check.Message = "Entry points found"
		}
		return check
	}
}

// CacheCheck reports cache usage. It is informational and always healthy.
func CacheCheck(e EngineState) CheckFunc {
	return func(context.Context) Check {
		stats := e.Stats()
		cs := stats.Cache
		hitRate := 0.0
		if total := cs.Hits + cs.Misses; total > 0 {
			hitRate = float64(cs.Hits) / float64(total)
		}
		return Check{
			Name:    "cache",
			Status:  StatusHealthy,
			Message: "Cache available",
			Details: map[string]any{
				"size":        cs.Size,
				"hit_rate":    hitRate,
				"evictions":   cs.Evictions,
				"expirations": cs.Expirations,
				"ttl":         stats.CacheTTL.String(),
			},
		}
	}
}

// ProviderCheck pings the graph-data provider, e.g. Neo4jExecutor.Verify
func ProviderCheck(ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{Name: "provider"}
		if err := ping(ctx); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Connected"
		}
		return check
	}
}
