package algorithms

import "github.com/dd0wney/cluso-attackpath/pkg/graph"

// EnsembleWeights sets how much each sub-algorithm contributes to a hybrid
// score. They conventionally sum to 1; this is not enforced.
type EnsembleWeights struct {
	Shortest float64 `yaml:"shortest"`
	Rank     float64 `yaml:"rank"`
	Motif    float64 `yaml:"motif"`
}

// DefaultEnsembleWeights returns 0.4 / 0.3 / 0.3
func DefaultEnsembleWeights() EnsembleWeights {
	return EnsembleWeights{Shortest: 0.4, Rank: 0.3, Motif: 0.3}
}

func (w EnsembleWeights) of(a Algorithm) float64 {
	switch a {
	case AlgorithmShortest:
		return w.Shortest
	case AlgorithmRank:
		return w.Rank
	case AlgorithmMotif:
		return w.Motif
	default:
		return 0
	}
}

// EnsembleCombiner merges the weighted, rank and motif finders.
type EnsembleCombiner struct {
	weighted *WeightedPathFinder
	rank     *PersonalizedRankFinder
	motif    *MotifPatternFinder
	weights  EnsembleWeights
	topN     int
}

// NewEnsembleCombiner wires the three finders with the given weights
func NewEnsembleCombiner(
	weighted *WeightedPathFinder,
	rank *PersonalizedRankFinder,
	motif *MotifPatternFinder,
	weights EnsembleWeights,
) *EnsembleCombiner {
	return &EnsembleCombiner{
		weighted: weighted,
		rank:     rank,
		motif:    motif,
		weights:  weights,
		topN:     DefaultTopN,
	}
}

// NewDefaultEnsemble builds an ensemble over g with default finders
func NewDefaultEnsemble(g *graph.Graph) *EnsembleCombiner {
	return NewEnsembleCombiner(
		NewWeightedPathFinder(g, NewEdgeWeightCalculator()),
		NewPersonalizedRankFinder(g, DefaultPageRankOptions()),
		NewMotifPatternFinder(g),
		DefaultEnsembleWeights(),
	)
}

// WithTopN sets how many merged paths are returned
func (c *EnsembleCombiner) WithTopN(n int) *EnsembleCombiner {
	c.topN = n
	return c
}

// FindPaths runs all three finders, merges their paths by exact node
// sequence and scores each as the weighted sum of the scores it received.
// The weighted finder contributes only its single lightest path.
//
// Weights are not renormalised: a path only one finder produced keeps just
// that finder's weighted score, so agreement between finders ranks higher.
func (c *EnsembleCombiner) FindPaths(source, target string, maxHops int) []AttackPath {
	type merged struct {
		nodes  []string
		scores map[Algorithm]float64
		order  []Algorithm
	}

	byKey := make(map[string]*merged)
	var keys []string

	add := func(paths []AttackPath) {
		for _, p := range paths {
			key := p.Key()
			m, ok := byKey[key]
			if !ok {
				m = &merged{nodes: p.Nodes, scores: make(map[Algorithm]float64)}
				byKey[key] = m
				keys = append(keys, key)
			}
			if _, dup := m.scores[p.Algorithm]; !dup {
				m.order = append(m.order, p.Algorithm)
			}
			m.scores[p.Algorithm] = p.Score
		}
	}

	add(c.weighted.ShortestWithin(source, target, maxHops))
	add(c.rank.FindPaths(source, target, maxHops))
	add(c.motif.FindPaths(source, target, maxHops))

	results := make([]AttackPath, 0, len(keys))
	for _, key := range keys {
		m := byKey[key]
		hybrid := 0.0
		contributions := make(map[Algorithm]float64, len(m.order))
		for _, alg := range m.order {
			part := c.weights.of(alg) * m.scores[alg]
			contributions[alg] = part
			hybrid += part
		}

		p := NewAttackPath(m.nodes, AlgorithmHybrid, hybrid)
		p.Contributions = contributions
		results = append(results, p)
	}

	return TopN(results, c.topN)
}
