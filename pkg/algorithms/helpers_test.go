package algorithms

import (
	"testing"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

// testGraph accumulates nodes and edges for a test graph
type testGraph struct {
	t     *testing.T
	nodes []graph.Node
	edges []graph.Edge
}

func newTestGraph(t *testing.T) *testGraph {
	t.Helper()
	return &testGraph{t: t}
}

func (b *testGraph) node(id string, typ graph.NodeType) *testGraph {
	b.nodes = append(b.nodes, graph.Node{ID: id, Type: typ})
	return b
}

func (b *testGraph) crownJewel(id string, typ graph.NodeType) *testGraph {
	b.nodes = append(b.nodes, graph.Node{ID: id, Type: typ, Critical: true})
	return b
}

func (b *testGraph) withAttrs(id string, typ graph.NodeType, attrs map[string]any) *testGraph {
	b.nodes = append(b.nodes, graph.Node{ID: id, Type: typ, Attributes: attrs})
	return b
}

func (b *testGraph) edge(from, to string, rel graph.RelationType, props map[string]any) *testGraph {
	b.edges = append(b.edges, graph.Edge{SourceID: from, TargetID: to, Relation: rel, Properties: props})
	return b
}

// link adds a CONNECTS_TO edge whose four weight factors all equal f,
// giving weight (1+f)^4
func (b *testGraph) link(from, to string, f float64) *testGraph {
	return b.edge(from, to, graph.RelConnectsTo, uniformFactors(f))
}

func (b *testGraph) build() *graph.Graph {
	b.t.Helper()
	g, err := graph.Build(b.nodes, b.edges)
	if err != nil {
		b.t.Fatalf("Failed to build test graph: %v", err)
	}
	return g
}

func uniformFactors(f float64) map[string]any {
	return map[string]any{
		PropExploitability: f,
		PropExposure:       f,
		PropPrivilegeGain:  f,
		PropRecency:        f,
	}
}

// publicVM wires sg -ALLOWS-> ingress(0.0.0.0/0) and sg -APPLIES_TO-> vm
func (b *testGraph) publicVM(vmID string) *testGraph {
	sg := "sg-" + vmID
	ingress := "ingress-" + vmID
	return b.
		node(vmID, graph.NodeVM).
		node(sg, graph.NodeSecurityGroup).
		withAttrs(ingress, graph.NodeControl, map[string]any{PropCIDR: PublicCIDR}).
		edge(sg, ingress, graph.RelAllows, nil).
		edge(sg, vmID, graph.RelAppliesTo, nil)
}

func assertSimplePaths(t *testing.T, paths []AttackPath) {
	t.Helper()
	for _, p := range paths {
		if !p.IsSimple() {
			t.Errorf("Path %v revisits a node", p.Nodes)
		}
		if p.Length != len(p.Nodes)-1 {
			t.Errorf("Path %v has Length %d, want %d", p.Nodes, p.Length, len(p.Nodes)-1)
		}
	}
}

func nodesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
