package algorithms

import (
	"gonum.org/v1/gonum/floats"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

// DefaultTopN is how many paths each path finder returns
const DefaultTopN = 5

// PageRankOptions configures personalized PageRank
type PageRankOptions struct {
	DampingFactor float64 // Usually 0.85
	MaxIterations int
	Tolerance     float64 // Convergence threshold, per node
	TopN          int     // Paths returned by PersonalizedRankFinder
	MaxPaths      int     // Simple paths enumerated per query, 0 = every path
}

// DefaultPageRankOptions returns default PageRank configuration
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		DampingFactor: 0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
		TopN:          DefaultTopN,
	}
}

// PageRankResult contains importance scores for all nodes
type PageRankResult struct {
	Scores     map[string]float64 // Node ID -> importance
	Iterations int                // Number of iterations performed
	Converged  bool               // Whether algorithm converged
}

// PersonalizedPageRank computes random-walk importance with every teleport
// landing on target, so nodes that lead toward target score higher.
//
// Each edge carries equal transition weight, so parallel edges strengthen a
// hop. Mass from nodes without outgoing edges is returned to the target. If
// the iteration cap is hit the last iterate is returned with Converged=false.
func PersonalizedPageRank(g *graph.Graph, target string, opts PageRankOptions) *PageRankResult {
	ids := g.NodeIDs()
	n := len(ids)
	if n == 0 {
		return &PageRankResult{Scores: make(map[string]float64), Converged: true}
	}

	index := make(map[string]int, n)
	for i, id := range ids {
		index[id] = i
	}

	// Personalization vector: all mass on the target. With no target in the
	// graph there is nowhere to teleport and every score decays toward zero.
	personal := make([]float64, n)
	if t, ok := index[target]; ok {
		personal[t] = 1.0
	}

	outDegree := make([]float64, n)
	for i, id := range ids {
		outDegree[i] = float64(len(g.OutEdges(id)))
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}
	next := make([]float64, n)

	converged := false
	iterations := 0
	alpha := opts.DampingFactor

	for iterations < opts.MaxIterations {
		iterations++

		for i := range next {
			next[i] = 0
		}

		dangling := 0.0
		for i, id := range ids {
			if outDegree[i] == 0 {
				dangling += scores[i]
				continue
			}
			share := alpha * scores[i] / outDegree[i]
			for _, e := range g.OutEdges(id) {
				next[index[e.TargetID]] += share
			}
		}

		// Teleport and dangling mass both follow the personalization vector
		floats.AddScaled(next, alpha*dangling+(1.0-alpha), personal)

		diff := floats.Distance(next, scores, 1)
		scores, next = next, scores

		if diff < float64(n)*opts.Tolerance {
			converged = true
			break
		}
	}

	result := &PageRankResult{
		Scores:     make(map[string]float64, n),
		Iterations: iterations,
		Converged:  converged,
	}
	for i, id := range ids {
		result.Scores[id] = scores[i]
	}
	return result
}

// GetNodeRank returns the importance score for a specific node
func (pr *PageRankResult) GetNodeRank(nodeID string) float64 {
	return pr.Scores[nodeID]
}

// PersonalizedRankFinder scores simple paths by the mean importance of their
// nodes under PageRank personalized to the target.
type PersonalizedRankFinder struct {
	graph *graph.Graph
	opts  PageRankOptions
}

// NewPersonalizedRankFinder creates a finder over g
func NewPersonalizedRankFinder(g *graph.Graph, opts PageRankOptions) *PersonalizedRankFinder {
	return &PersonalizedRankFinder{graph: g, opts: opts}
}

// FindPaths returns the TopN simple paths (at most maxHops edges) from source
// to target by mean node importance, highest first.
func (f *PersonalizedRankFinder) FindPaths(source, target string, maxHops int) []AttackPath {
	paths := AllSimplePaths(f.graph, source, target, maxHops, f.opts.MaxPaths)
	if len(paths) == 0 {
		return []AttackPath{}
	}

	pr := PersonalizedPageRank(f.graph, target, f.opts)

	results := make([]AttackPath, 0, len(paths))
	values := make([]float64, 0, maxHops+1)
	for _, nodes := range paths {
		values = values[:0]
		for _, id := range nodes {
			values = append(values, pr.GetNodeRank(id))
		}
		mean := floats.Sum(values) / float64(len(nodes))

		p := NewAttackPath(nodes, AlgorithmRank, mean)
		p.RankScore = mean
		results = append(results, p)
	}

	return TopN(results, f.opts.TopN)
}
