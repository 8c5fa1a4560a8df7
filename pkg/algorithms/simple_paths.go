package algorithms

import "github.com/dd0wney/cluso-attackpath/pkg/graph"

// DefaultMaxEnumeratedPaths bounds how many paths TopKSimple emits before
// giving up on dense graphs
const DefaultMaxEnumeratedPaths = 10000

// AllSimplePaths enumerates simple paths from source to target with at most
// maxHops edges, in depth-first order over successors. Enumeration stops after
// limit paths (0 = unlimited). Parallel edges yield one path.
//
// No paths are produced when source == target, when maxHops < 1, or when
// either endpoint is absent.
func AllSimplePaths(g *graph.Graph, source, target string, maxHops, limit int) [][]string {
	if maxHops < 1 || source == target || !g.HasNode(source) || !g.HasNode(target) {
		return nil
	}

	var paths [][]string
	stack := []string{source}
	onPath := map[string]bool{source: true}

	var visit func(current string) bool
	visit = func(current string) bool {
		for _, next := range g.Successors(current) {
			if onPath[next] {
				continue
			}
			if next == target {
				p := make([]string, len(stack)+1)
				copy(p, stack)
				p[len(stack)] = target
				paths = append(paths, p)
				if limit > 0 && len(paths) >= limit {
					return false
				}
				continue
			}
			// Only descend while another hop still fits
			if len(stack) >= maxHops {
				continue
			}
			stack = append(stack, next)
			onPath[next] = true
			more := visit(next)
			onPath[next] = false
			stack = stack[:len(stack)-1]
			if !more {
				return false
			}
		}
		return true
	}

	visit(source)
	return paths
}
