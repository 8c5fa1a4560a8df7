package graph

import "sync/atomic"

// Store holds the current graph snapshot. Readers take the snapshot once per
// query; Load builds a replacement and swaps it in atomically, so a query never
// observes a half-loaded graph.
type Store struct {
	current atomic.Pointer[Graph]
}

// NewStore creates a store holding an empty graph
func NewStore() *Store {
	s := &Store{}
	s.current.Store(New())
	return s
}

// Current returns the active snapshot
func (s *Store) Current() *Graph {
	return s.current.Load()
}

// Swap replaces the active snapshot and returns the previous one
func (s *Store) Swap(g *Graph) *Graph {
	return s.current.Swap(g)
}

// Load builds a graph from a full node/edge list and makes it current.
// On error the previous snapshot stays active.
func (s *Store) Load(nodes []Node, edges []Edge) (*Graph, error) {
	g, err := Build(nodes, edges)
	if err != nil {
		return nil, err
	}
	s.current.Store(g)
	return g, nil
}
