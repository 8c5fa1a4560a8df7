package algorithms

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

func TestEdgeWeightCalculator_Weight(t *testing.T) {
	c := NewEdgeWeightCalculator()

	tests := []struct {
		name  string
		props map[string]any
		want  float64
	}{
		{"all zero", uniformFactors(0), 1},
		{"all one", uniformFactors(1), 16},
		{"missing factors default to 0.5", nil, math.Pow(1.5, 4)},
		{"mixed", map[string]any{
			PropExploitability: 0.9, PropExposure: 0.9, PropPrivilegeGain: 0.1, PropRecency: 0.5,
		}, 1.9 * 1.9 * 1.1 * 1.5},
		{"clamped", map[string]any{
			PropExploitability: 3.0, PropExposure: -2.0, PropPrivilegeGain: 0, PropRecency: 0,
		}, 2},
		{"numeric strings", map[string]any{
			PropExploitability: "1", PropExposure: json.Number("0"), PropPrivilegeGain: 0, PropRecency: int64(0),
		}, 2},
		{"malformed falls back", map[string]any{
			PropExploitability: "high", PropExposure: math.NaN(), PropPrivilegeGain: 0, PropRecency: 0,
		}, 1.5 * 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &graph.Edge{SourceID: "a", TargetID: "b", Relation: graph.RelConnectsTo, Properties: tt.props}
			if got := c.Weight(e); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Weight() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestEdgeWeightCalculator_Bounds(t *testing.T) {
	c := NewEdgeWeightCalculator()
	for _, f := range []float64{-1, 0, 0.25, 0.5, 0.75, 1, 2} {
		w := c.Weight(&graph.Edge{Properties: uniformFactors(f)})
		if w < 1 || w > 16 {
			t.Errorf("Weight for factor %f out of [1,16]: %f", f, w)
		}
	}
}

func TestPathWeight(t *testing.T) {
	g := newTestGraph(t).
		node("a", graph.NodeVM).
		node("b", graph.NodeVM).
		node("c", graph.NodeDB).
		link("a", "b", 0).
		link("a", "b", 1).
		link("b", "c", 1).
		build()
	c := NewEdgeWeightCalculator()

	total, ok := PathWeight(g, c, []string{"a", "b", "c"})
	if !ok || total != 17 {
		t.Errorf("Expected lightest parallel edge plus 16 = 17, got %f (ok=%v)", total, ok)
	}
	if _, ok := PathWeight(g, c, []string{"c", "a"}); ok {
		t.Error("Expected missing hop to fail")
	}
	if total, ok := PathWeight(g, c, []string{"a"}); !ok || total != 0 {
		t.Errorf("Single-node path should weigh 0, got %f", total)
	}
}

func TestWeightScore(t *testing.T) {
	if WeightScore(0) != 1 {
		t.Errorf("Expected 1 for zero weight, got %f", WeightScore(0))
	}
	if WeightScore(3) != 0.25 {
		t.Errorf("Expected 0.25, got %f", WeightScore(3))
	}
}
