package algorithms

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

const propertyNodes = 6

// randomGraph builds a graph on n0..n5 from an edge mask and factor list.
// Bit i*6+j of mask adds the edge ni -> nj (self loops skipped).
func randomGraph(mask uint64, factors []float64) *graph.Graph {
	g := graph.New()
	for i := 0; i < propertyNodes; i++ {
		_ = g.AddNode(graph.Node{ID: fmt.Sprintf("n%d", i), Type: graph.NodeVM})
	}
	k := 0
	for i := 0; i < propertyNodes; i++ {
		for j := 0; j < propertyNodes; j++ {
			if i == j || mask&(1<<uint(i*propertyNodes+j)) == 0 {
				continue
			}
			f := 0.5
			if len(factors) > 0 {
				f = factors[k%len(factors)]
			}
			k++
			_ = g.AddEdge(graph.Edge{
				SourceID:   fmt.Sprintf("n%d", i),
				TargetID:   fmt.Sprintf("n%d", j),
				Relation:   graph.RelConnectsTo,
				Properties: uniformFactors(f),
			})
		}
	}
	return g
}

func reachable(g *graph.Graph, source, target string) bool {
	seen := map[string]bool{source: true}
	queue := []string{source}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == target {
			return true
		}
		for _, next := range g.Successors(cur) {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// TestAttackPathInvariants uses property-based testing over random small graphs
func TestAttackPathInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	masks := gen.UInt64Range(0, 1<<36-1)
	factors := gen.SliceOfN(8, gen.Float64Range(0, 1))
	hops := gen.IntRange(1, 5)

	properties.Property("every finder returns simple paths within the hop bound", prop.ForAll(
		func(mask uint64, fs []float64, maxHops int) bool {
			g := randomGraph(mask, fs)
			sets := [][]AttackPath{
				NewWeightedPathFinder(g, nil).TopKSimple("n0", "n5", 5, maxHops),
				NewWeightedPathFinder(g, nil).ShortestWithin("n0", "n5", maxHops),
				NewPersonalizedRankFinder(g, DefaultPageRankOptions()).FindPaths("n0", "n5", maxHops),
				NewMotifPatternFinder(g).FindPaths("n0", "n5", maxHops),
				NewDefaultEnsemble(g).FindPaths("n0", "n5", maxHops),
			}
			for _, paths := range sets {
				if len(paths) > DefaultTopN {
					return false
				}
				for _, p := range paths {
					if !p.IsSimple() || p.Length > maxHops || p.Source() != "n0" || p.Target() != "n5" {
						return false
					}
					if _, ok := PathWeight(g, NewEdgeWeightCalculator(), p.Nodes); !ok {
						return false
					}
				}
			}
			return true
		},
		masks, factors, hops,
	))

	properties.Property("K-shortest weights never decrease", prop.ForAll(
		func(mask uint64, fs []float64) bool {
			g := randomGraph(mask, fs)
			paths := NewWeightedPathFinder(g, nil).TopKSimple("n0", "n5", 10, propertyNodes)
			for i := 1; i < len(paths); i++ {
				if paths[i].TotalWeight < paths[i-1].TotalWeight-1e-9 {
					return false
				}
			}
			return true
		},
		masks, factors,
	))

	properties.Property("unreachable target yields no paths from any finder", prop.ForAll(
		func(mask uint64, fs []float64) bool {
			g := randomGraph(mask, fs)
			if reachable(g, "n0", "n5") {
				return true
			}
			return len(NewWeightedPathFinder(g, nil).TopKSimple("n0", "n5", 5, propertyNodes)) == 0 &&
				len(NewPersonalizedRankFinder(g, DefaultPageRankOptions()).FindPaths("n0", "n5", propertyNodes)) == 0 &&
				len(NewMotifPatternFinder(g).FindPaths("n0", "n5", propertyNodes)) == 0 &&
				len(NewDefaultEnsemble(g).FindPaths("n0", "n5", propertyNodes)) == 0
		},
		masks, factors,
	))

	properties.Property("shortest path agrees with the first K-shortest path", prop.ForAll(
		func(mask uint64, fs []float64) bool {
			g := randomGraph(mask, fs)
			f := NewWeightedPathFinder(g, nil)
			best, ok := f.Shortest("n0", "n5")
			paths := f.TopKSimple("n0", "n5", 1, propertyNodes)
			if !ok {
				return len(paths) == 0
			}
			return len(paths) == 1 && nodesEqual(best.Nodes, paths[0].Nodes)
		},
		masks, factors,
	))

	properties.TestingRun(t)
}
