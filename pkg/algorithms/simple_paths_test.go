package algorithms

import (
	"testing"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

func TestAllSimplePaths(t *testing.T) {
	g := yenGraph(t)

	tests := []struct {
		name    string
		source  string
		target  string
		maxHops int
		limit   int
		want    int
	}{
		{"all routes", "s", "t", 4, 0, 3},
		{"hop bound", "s", "t", 2, 0, 2},
		{"direct only", "s", "t", 1, 0, 1},
		{"zero hops", "s", "t", 0, 0, 0},
		{"limit", "s", "t", 4, 2, 2},
		{"same node", "s", "s", 4, 0, 0},
		{"missing", "s", "ghost", 4, 0, 0},
		{"reverse", "t", "s", 4, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := AllSimplePaths(g, tt.source, tt.target, tt.maxHops, tt.limit)
			if len(paths) != tt.want {
				t.Fatalf("Expected %d paths, got %d: %v", tt.want, len(paths), paths)
			}
			for _, p := range paths {
				if len(p)-1 > tt.maxHops {
					t.Errorf("Path %v exceeds %d hops", p, tt.maxHops)
				}
				if p[0] != tt.source || p[len(p)-1] != tt.target {
					t.Errorf("Path %v has wrong endpoints", p)
				}
			}
		})
	}
}

func TestAllSimplePaths_CyclesAndParallelEdges(t *testing.T) {
	g := newTestGraph(t).
		node("a", graph.NodeVM).
		node("b", graph.NodeVM).
		node("c", graph.NodeDB).
		link("a", "b", 0).
		link("a", "b", 1).
		link("b", "a", 0).
		link("b", "c", 0).
		build()

	paths := AllSimplePaths(g, "a", "c", 10, 0)
	if len(paths) != 1 || !nodesEqual(paths[0], []string{"a", "b", "c"}) {
		t.Errorf("Expected the single path [a b c], got %v", paths)
	}
}
