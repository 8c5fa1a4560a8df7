package graph

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Graph is an in-memory directed multigraph of infrastructure assets.
//
// A Graph is built once (New + AddNode/AddEdge, or Build) and then shared
// read-only by every finder for the duration of a query. Updates are applied
// by building a new Graph and swapping it into a Store.
type Graph struct {
	id    string
	nodes map[string]*Node
	order []string // node IDs in first-insertion order

	outgoing  map[string][]*Edge
	incoming  map[string][]*Edge
	edgeCount int
}

// New creates an empty graph with a fresh snapshot ID
func New() *Graph {
	return &Graph{
		id:       uuid.NewString(),
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]*Edge),
		incoming: make(map[string][]*Edge),
	}
}

// Build creates a graph from full node and edge lists.
// Nodes are added before edges so edge order in the input does not matter.
func Build(nodes []Node, edges []Edge) (*Graph, error) {
	g := New()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ID returns the snapshot identifier assigned when the graph was created
func (g *Graph) ID() string {
	return g.id
}

// AddNode inserts a node. A node with an existing ID overwrites the previous
// node's data; its edges are kept.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return nodeError("AddNode", "", fmt.Errorf("%w: empty id", ErrInvalidNode))
	}
	if !n.Type.Valid() {
		return nodeError("AddNode", n.ID, fmt.Errorf("%w: unknown type %q", ErrInvalidNode, n.Type))
	}

	attrs := make(map[string]any, len(n.Attributes))
	for k, v := range n.Attributes {
		attrs[k] = v
	}
	n.Attributes = attrs

	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = &n
	return nil
}

// AddEdge inserts a directed edge. Both endpoints must already exist.
func (g *Graph) AddEdge(e Edge) error {
	if !e.Relation.Valid() {
		return edgeError("AddEdge", e, fmt.Errorf("%w: unknown relation %q", ErrInvalidEdge, e.Relation))
	}
	if _, ok := g.nodes[e.SourceID]; !ok {
		return edgeError("AddEdge", e, fmt.Errorf("source %q: %w", e.SourceID, ErrNodeNotFound))
	}
	if _, ok := g.nodes[e.TargetID]; !ok {
		return edgeError("AddEdge", e, fmt.Errorf("target %q: %w", e.TargetID, ErrNodeNotFound))
	}

	props := make(map[string]any, len(e.Properties))
	for k, v := range e.Properties {
		props[k] = v
	}
	e.Properties = props

	edge := &e
	g.outgoing[e.SourceID] = append(g.outgoing[e.SourceID], edge)
	g.incoming[e.TargetID] = append(g.incoming[e.TargetID], edge)
	g.edgeCount++
	return nil
}

// HasNode reports whether id is present
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with the given ID
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// NodeIDs returns all node IDs in insertion order
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

// Nodes returns all nodes in insertion order
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, *g.nodes[id])
	}
	return nodes
}

// OutEdges returns the outgoing edges of a node in insertion order.
// The returned slice is shared and must not be modified.
func (g *Graph) OutEdges(id string) []*Edge {
	return g.outgoing[id]
}

// InEdges returns the incoming edges of a node in insertion order.
// The returned slice is shared and must not be modified.
func (g *Graph) InEdges(id string) []*Edge {
	return g.incoming[id]
}

// EdgesBetween returns every parallel edge from source to target
func (g *Graph) EdgesBetween(source, target string) []*Edge {
	var edges []*Edge
	for _, e := range g.outgoing[source] {
		if e.TargetID == target {
			edges = append(edges, e)
		}
	}
	return edges
}

// Successors returns the distinct targets of a node's outgoing edges,
// ordered by first edge.
func (g *Graph) Successors(id string) []string {
	out := g.outgoing[id]
	if len(out) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(out))
	succ := make([]string, 0, len(out))
	for _, e := range out {
		if !seen[e.TargetID] {
			seen[e.TargetID] = true
			succ = append(succ, e.TargetID)
		}
	}
	return succ
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges, counting parallel edges separately
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// CriticalNodes returns all crown-jewel nodes sorted by ID
func (g *Graph) CriticalNodes() []Node {
	var critical []Node
	for _, n := range g.nodes {
		if n.Critical {
			critical = append(critical, *n)
		}
	}
	sort.Slice(critical, func(i, j int) bool { return critical[i].ID < critical[j].ID })
	return critical
}
