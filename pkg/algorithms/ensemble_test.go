package algorithms

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

func TestEnsemble_WeightedSumAcrossFinders(t *testing.T) {
	g := breachGraph(t, true)
	c := NewDefaultEnsemble(g)

	paths := c.FindPaths("vm1", "bucket1", 4)
	require.Len(t, paths, 1)

	weighted := NewWeightedPathFinder(g, NewEdgeWeightCalculator()).ShortestWithin("vm1", "bucket1", 4)
	rank := NewPersonalizedRankFinder(g, DefaultPageRankOptions()).FindPaths("vm1", "bucket1", 4)
	motif := NewMotifPatternFinder(g).FindPaths("vm1", "bucket1", 4)
	require.Len(t, weighted, 1)
	require.Len(t, rank, 1)
	require.Len(t, motif, 1)

	want := 0.4*weighted[0].Score + 0.3*rank[0].Score + 0.3*motif[0].Score
	assert.InDelta(t, want, paths[0].Score, 1e-12)
	assert.Equal(t, AlgorithmHybrid, paths[0].Algorithm)
	assert.Len(t, paths[0].Contributions, 3)
	assert.InDelta(t, 0.4*weighted[0].Score, paths[0].Contributions[AlgorithmShortest], 1e-15)
}

func TestEnsemble_NoRenormalisationForSingleFinder(t *testing.T) {
	g := yenGraph(t)

	// Rank and motif finders that return nothing leave only shortest contributions
	opts := DefaultPageRankOptions()
	opts.TopN = 0
	c := NewEnsembleCombiner(
		NewWeightedPathFinder(g, nil),
		NewPersonalizedRankFinder(g, opts),
		NewMotifPatternFinder(g).WithLimits(0, 0),
		DefaultEnsembleWeights(),
	)

	paths := c.FindPaths("s", "t", 4)
	shortest, ok := NewWeightedPathFinder(g, nil).Shortest("s", "t")
	require.True(t, ok)
	require.Len(t, paths, 1)

	assert.Equal(t, shortest.Nodes, paths[0].Nodes)
	assert.Equal(t, 0.4*shortest.Score, paths[0].Score, "shortest-only score must be exactly 0.4*s")
	assert.Len(t, paths[0].Contributions, 1)
}

func TestEnsemble_ShortestContributesOnlyLightestPath(t *testing.T) {
	g := newTestGraph(t).
		node("vm1", graph.NodeVM).
		node("a", graph.NodeVM).
		node("b", graph.NodeVM).
		node("db1", graph.NodeDB).
		link("vm1", "a", 0.1).
		link("a", "db1", 0.1).
		link("vm1", "b", 0.9).
		link("b", "db1", 0.9).
		build()

	paths := NewDefaultEnsemble(g).FindPaths("vm1", "db1", 4)
	require.Len(t, paths, 2)

	contributed := 0
	for _, p := range paths {
		if _, ok := p.Contributions[AlgorithmShortest]; ok {
			contributed++
			assert.Equal(t, []string{"vm1", "a", "db1"}, p.Nodes)
		}
	}
	assert.Equal(t, 1, contributed)
	assert.Equal(t, []string{"vm1", "a", "db1"}, paths[0].Nodes)
}

func TestEnsemble_ShortestRespectsHopBound(t *testing.T) {
	g := yenGraph(t)
	opts := DefaultPageRankOptions()
	opts.TopN = 0
	c := NewEnsembleCombiner(
		NewWeightedPathFinder(g, nil),
		NewPersonalizedRankFinder(g, opts),
		NewMotifPatternFinder(g).WithLimits(0, 0),
		DefaultEnsembleWeights(),
	)

	// s -> a -> t is lightest but needs two hops
	paths := c.FindPaths("s", "t", 1)
	require.Len(t, paths, 1)
	assert.Equal(t, []string{"s", "t"}, paths[0].Nodes)
}

func TestEnsemble_CustomWeights(t *testing.T) {
	g := breachGraph(t, true)
	weights := EnsembleWeights{Shortest: 0, Rank: 0, Motif: 1}
	c := NewEnsembleCombiner(
		NewWeightedPathFinder(g, nil),
		NewPersonalizedRankFinder(g, DefaultPageRankOptions()),
		NewMotifPatternFinder(g),
		weights,
	)

	paths := c.FindPaths("vm1", "bucket1", 4)
	require.Len(t, paths, 1)
	assert.InDelta(t, 0.25, paths[0].Score, 1e-12)
}

func TestEnsemble_DedupesBySequence(t *testing.T) {
	g := yenGraph(t)
	paths := NewDefaultEnsemble(g).FindPaths("s", "t", 4)

	seen := make(map[string]bool)
	for _, p := range paths {
		require.False(t, seen[p.Key()], "duplicate path %v", p.Nodes)
		seen[p.Key()] = true
	}
	assert.Len(t, paths, 3)
	assertSimplePaths(t, paths)

	for i := 1; i < len(paths); i++ {
		assert.GreaterOrEqual(t, paths[i-1].Score, paths[i].Score)
	}
}

func TestEnsemble_NoPath(t *testing.T) {
	g := newTestGraph(t).
		node("a", graph.NodeVM).
		node("b", graph.NodeDB).
		build()

	paths := NewDefaultEnsemble(g).FindPaths("a", "b", 4)
	assert.Empty(t, paths)
	assert.NotNil(t, paths)
}

func TestEnsemble_AgreementOutranksSingleFinder(t *testing.T) {
	g := yenGraph(t)
	paths := NewDefaultEnsemble(g).FindPaths("s", "t", 4)
	require.NotEmpty(t, paths)

	// Rank and motif find every path here, so every hybrid score exceeds
	// its shortest contribution alone
	for _, p := range paths {
		assert.Greater(t, p.Score, p.Contributions[AlgorithmShortest])
		assert.False(t, math.IsNaN(p.Score))
	}
}
