package algorithms

import (
	"math"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

// Edge properties that feed the attack-likelihood weight
const (
	PropExploitability = "exploitability"
	PropExposure       = "exposure"
	PropPrivilegeGain  = "privilege_gain"
	PropRecency        = "recency"
)

// DefaultWeightFactor is used for any missing or malformed factor
const DefaultWeightFactor = 0.5

var weightFactors = []string{PropExploitability, PropExposure, PropPrivilegeGain, PropRecency}

// EdgeWeigher turns an edge into a positive scalar weight
type EdgeWeigher interface {
	Weight(e *graph.Edge) float64
}

// EdgeWeightCalculator computes
//
//	w = (1+exploitability) * (1+exposure) * (1+privilege_gain) * (1+recency)
//
// Each factor lies in [0,1] (out-of-range values are clamped), so w is in
// [1,16]. Weights are recomputed per query and never stored on the edge.
type EdgeWeightCalculator struct {
	DefaultFactor float64
}

// NewEdgeWeightCalculator returns a calculator using DefaultWeightFactor
func NewEdgeWeightCalculator() EdgeWeightCalculator {
	return EdgeWeightCalculator{DefaultFactor: DefaultWeightFactor}
}

// Weight returns the attack-likelihood weight of an edge
func (c EdgeWeightCalculator) Weight(e *graph.Edge) float64 {
	w := 1.0
	for _, key := range weightFactors {
		w *= 1.0 + c.factor(e, key)
	}
	return w
}

func (c EdgeWeightCalculator) factor(e *graph.Edge, key string) float64 {
	raw, ok := e.Prop(key)
	if !ok {
		return c.DefaultFactor
	}
	f, ok := graph.Float(raw)
	if !ok || math.IsNaN(f) {
		return c.DefaultFactor
	}
	return math.Max(0, math.Min(1, f))
}

// hopWeight returns the lightest parallel edge from source to target
func hopWeight(g *graph.Graph, w EdgeWeigher, source, target string) (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, e := range g.OutEdges(source) {
		if e.TargetID != target {
			continue
		}
		if ew := w.Weight(e); ew < best {
			best = ew
		}
		found = true
	}
	return best, found
}

// PathWeight sums hop weights along a node sequence.
// Returns false if any hop has no edge.
func PathWeight(g *graph.Graph, w EdgeWeigher, nodes []string) (float64, bool) {
	total := 0.0
	for i := 0; i+1 < len(nodes); i++ {
		hw, ok := hopWeight(g, w, nodes[i], nodes[i+1])
		if !ok {
			return 0, false
		}
		total += hw
	}
	return total, true
}

// WeightScore converts a total path weight into a risk score in (0,1]
func WeightScore(totalWeight float64) float64 {
	return 1.0 / (1.0 + totalWeight)
}
