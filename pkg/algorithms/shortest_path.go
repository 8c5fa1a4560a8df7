package algorithms

import (
	"container/heap"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

// WeightedPathFinder finds risk-weighted shortest paths, using the edge weight
// as the length of a hop.
type WeightedPathFinder struct {
	graph  *graph.Graph
	weigh  EdgeWeigher
	maxRun int // cap on paths emitted by TopKSimple, including filtered ones
}

// NewWeightedPathFinder creates a finder over g
func NewWeightedPathFinder(g *graph.Graph, weigher EdgeWeigher) *WeightedPathFinder {
	if weigher == nil {
		weigher = NewEdgeWeightCalculator()
	}
	return &WeightedPathFinder{
		graph:  g,
		weigh:  weigher,
		maxRun: DefaultMaxEnumeratedPaths,
	}
}

// WithCandidateLimit caps how many simple paths TopKSimple may enumerate
// (accepted or filtered) before giving up. 0 disables the cap.
func (f *WeightedPathFinder) WithCandidateLimit(n int) *WeightedPathFinder {
	f.maxRun = n
	return f
}

// Shortest returns the single minimum-weight path from source to target.
// Returns false if either endpoint is absent or target is unreachable.
func (f *WeightedPathFinder) Shortest(source, target string) (AttackPath, bool) {
	if !f.graph.HasNode(source) || !f.graph.HasNode(target) {
		return AttackPath{}, false
	}
	nodes, total, ok := f.dijkstra(source, target, nil, nil)
	if !ok {
		return AttackPath{}, false
	}
	p := NewAttackPath(nodes, AlgorithmShortest, WeightScore(total))
	p.TotalWeight = total
	p.Rank = 1
	return p, true
}

// ShortestWithin returns the minimum-weight path of at most maxHops hops as a
// zero- or one-element slice. A lighter path that is too long is skipped in
// favour of the lightest one within the bound.
func (f *WeightedPathFinder) ShortestWithin(source, target string, maxHops int) []AttackPath {
	return f.TopKSimple(source, target, 1, maxHops)
}

// TopKSimple enumerates simple paths in non-decreasing total weight (Yen's
// algorithm) and returns the first k whose hop count is at most maxHops.
//
// Hop filtering happens after enumeration: a light path that is too long is
// skipped and the search keeps going, so a longer-than-allowed shortest path
// does not hide shorter-hop alternatives. Equal weights keep discovery order.
func (f *WeightedPathFinder) TopKSimple(source, target string, k, maxHops int) []AttackPath {
	results := []AttackPath{}
	if k <= 0 || maxHops < 0 || !f.graph.HasNode(source) || !f.graph.HasNode(target) {
		return results
	}

	first, total, ok := f.dijkstra(source, target, nil, nil)
	if !ok {
		return results
	}

	// accepted holds every emitted path (filtered or not); Yen deviates from all of them
	accepted := [][]string{first}
	seen := map[string]bool{pathKey(first): true}
	candidates := &candidateHeap{}
	seq := 0

	emit := func(nodes []string, weight float64) {
		if len(nodes)-1 > maxHops {
			return
		}
		p := NewAttackPath(nodes, AlgorithmShortest, WeightScore(weight))
		p.TotalWeight = weight
		p.Rank = len(results) + 1
		results = append(results, p)
	}
	emit(first, total)

	for len(results) < k {
		if f.maxRun > 0 && len(accepted) >= f.maxRun {
			break
		}

		last := accepted[len(accepted)-1]
		for i := 0; i < len(last)-1; i++ {
			spur := last[i]
			root := last[:i+1]

			// Remove the next hop of every emitted path sharing this root
			blockedEdges := make(map[[2]string]bool)
			for _, p := range accepted {
				if len(p) > i+1 && equalPrefix(p, root) {
					blockedEdges[[2]string{p[i], p[i+1]}] = true
				}
			}
			// Root nodes other than the spur may not be revisited
			blockedNodes := make(map[string]bool, i)
			for _, id := range root[:i] {
				blockedNodes[id] = true
			}

			spurPath, _, found := f.dijkstra(spur, target, blockedNodes, blockedEdges)
			if !found {
				continue
			}

			full := make([]string, 0, len(root)+len(spurPath)-1)
			full = append(full, root[:i]...)
			full = append(full, spurPath...)

			key := pathKey(full)
			if seen[key] {
				continue
			}
			seen[key] = true

			// Summed from the start so equal paths always compare equal
			weight, _ := PathWeight(f.graph, f.weigh, full)
			heap.Push(candidates, candidate{nodes: full, weight: weight, seq: seq})
			seq++
		}

		if candidates.Len() == 0 {
			break
		}
		next := heap.Pop(candidates).(candidate)
		accepted = append(accepted, next.nodes)
		emit(next.nodes, next.weight)
	}

	return results
}

// dijkstra finds the minimum-weight path avoiding blocked nodes and hops.
func (f *WeightedPathFinder) dijkstra(
	source, target string,
	blockedNodes map[string]bool,
	blockedEdges map[[2]string]bool,
) ([]string, float64, bool) {
	if source == target {
		return []string{source}, 0, true
	}

	dist := map[string]float64{source: 0}
	parent := make(map[string]string)
	done := make(map[string]bool)

	pq := &distanceHeap{}
	heap.Push(pq, distanceItem{nodeID: source, distance: 0})
	seq := 1

	for pq.Len() > 0 {
		current := heap.Pop(pq).(distanceItem)
		if done[current.nodeID] {
			continue
		}
		done[current.nodeID] = true

		if current.nodeID == target {
			path := []string{target}
			for node := target; node != source; {
				node = parent[node]
				path = append(path, node)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path, current.distance, true
		}

		for _, next := range f.graph.Successors(current.nodeID) {
			if done[next] || blockedNodes[next] || blockedEdges[[2]string{current.nodeID, next}] {
				continue
			}
			w, ok := hopWeight(f.graph, f.weigh, current.nodeID, next)
			if !ok {
				continue
			}
			newDist := current.distance + w
			if old, seen := dist[next]; !seen || newDist < old {
				dist[next] = newDist
				parent[next] = current.nodeID
				heap.Push(pq, distanceItem{nodeID: next, distance: newDist, seq: seq})
				seq++
			}
		}
	}

	return nil, 0, false
}

func equalPrefix(path, prefix []string) bool {
	if len(path) < len(prefix) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

// distanceHeap is a min-heap of tentative distances; seq keeps pops stable
// for equal distances.
type distanceItem struct {
	nodeID   string
	distance float64
	seq      int
}

type distanceHeap []distanceItem

func (h distanceHeap) Len() int { return len(h) }
func (h distanceHeap) Less(i, j int) bool {
	if h[i].distance != h[j].distance {
		return h[i].distance < h[j].distance
	}
	return h[i].seq < h[j].seq
}
func (h distanceHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *distanceHeap) Push(x any) {
	*h = append(*h, x.(distanceItem))
}

func (h *distanceHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// candidateHeap holds Yen deviations ordered by weight, then insertion order
type candidate struct {
	nodes  []string
	weight float64
	seq    int
}

type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	return h[i].seq < h[j].seq
}
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) {
	*h = append(*h, x.(candidate))
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
