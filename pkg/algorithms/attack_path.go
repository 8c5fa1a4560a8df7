package algorithms

import (
	"fmt"
	"sort"
	"strings"
)

// Algorithm identifies which scorer produced an AttackPath
type Algorithm int

const (
	AlgorithmShortest Algorithm = iota + 1 // risk-weighted shortest / K-shortest simple paths
	AlgorithmRank                          // target-personalized PageRank
	AlgorithmMotif                         // attack-pattern motif matching
	AlgorithmHybrid                        // weighted ensemble of the three above
	AlgorithmExternal                      // pluggable scoring oracle
)

var algorithmNames = map[Algorithm]string{
	AlgorithmShortest: "shortest",
	AlgorithmRank:     "rank",
	AlgorithmMotif:    "motif",
	AlgorithmHybrid:   "hybrid",
	AlgorithmExternal: "external",
}

// algorithmAliases accepts the names used by older scoring services
var algorithmAliases = map[string]Algorithm{
	"shortest": AlgorithmShortest,
	"dijkstra": AlgorithmShortest,
	"rank":     AlgorithmRank,
	"pagerank": AlgorithmRank,
	"motif":    AlgorithmMotif,
	"hybrid":   AlgorithmHybrid,
	"external": AlgorithmExternal,
	"gnn":      AlgorithmExternal,
}

// String returns the canonical algorithm name
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Valid reports whether a is a known algorithm
func (a Algorithm) Valid() bool {
	_, ok := algorithmNames[a]
	return ok
}

// ParseAlgorithm converts a name into an Algorithm
func ParseAlgorithm(s string) (Algorithm, error) {
	if a, ok := algorithmAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("unknown algorithm %q", s)
}

// MotifMatch records one detector hit on one hop of a path
type MotifMatch struct {
	Hop    int // index of the hop's source node in the path
	Source string
	Target string
	Motif  string
}

// AttackPath is a ranked candidate path from an entry point to a target.
// Nodes is a simple path: no node appears twice.
type AttackPath struct {
	Nodes     []string
	Algorithm Algorithm
	Score     float64 // higher is riskier
	Length    int     // hop count, len(Nodes)-1

	// Shortest only
	TotalWeight float64
	Rank        int // 1-based emission order

	// Rank only: mean personalized PageRank of the path's nodes
	RankScore float64

	// Motif only
	MotifScore float64
	Motifs     []MotifMatch

	// Hybrid only: weighted contribution per sub-algorithm
	Contributions map[Algorithm]float64
}

// NewAttackPath creates a path with a copied node sequence
func NewAttackPath(nodes []string, algorithm Algorithm, score float64) AttackPath {
	seq := make([]string, len(nodes))
	copy(seq, nodes)
	return AttackPath{
		Nodes:     seq,
		Algorithm: algorithm,
		Score:     score,
		Length:    len(seq) - 1,
	}
}

// Source returns the first node of the path
func (p AttackPath) Source() string {
	if len(p.Nodes) == 0 {
		return ""
	}
	return p.Nodes[0]
}

// Target returns the last node of the path
func (p AttackPath) Target() string {
	if len(p.Nodes) == 0 {
		return ""
	}
	return p.Nodes[len(p.Nodes)-1]
}

// Key identifies a path by its exact node sequence
func (p AttackPath) Key() string {
	return pathKey(p.Nodes)
}

// IsSimple reports whether the path is non-empty and visits no node twice
func (p AttackPath) IsSimple() bool {
	if len(p.Nodes) == 0 {
		return false
	}
	seen := make(map[string]bool, len(p.Nodes))
	for _, id := range p.Nodes {
		if seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

// Clone returns a deep copy so callers cannot alias cached results
func (p AttackPath) Clone() AttackPath {
	c := p
	c.Nodes = append([]string(nil), p.Nodes...)
	if p.Motifs != nil {
		c.Motifs = append([]MotifMatch(nil), p.Motifs...)
	}
	if p.Contributions != nil {
		c.Contributions = make(map[Algorithm]float64, len(p.Contributions))
		for k, v := range p.Contributions {
			c.Contributions[k] = v
		}
	}
	return c
}

// ClonePaths deep-copies a result list
func ClonePaths(paths []AttackPath) []AttackPath {
	if paths == nil {
		return nil
	}
	out := make([]AttackPath, len(paths))
	for i, p := range paths {
		out[i] = p.Clone()
	}
	return out
}

// SortByScore orders paths by descending score; equal scores keep their
// relative order so the first-found path wins ties.
func SortByScore(paths []AttackPath) {
	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].Score > paths[j].Score
	})
}

// TopN sorts paths by score and truncates to n
func TopN(paths []AttackPath, n int) []AttackPath {
	if n <= 0 {
		return []AttackPath{}
	}
	SortByScore(paths)
	if len(paths) > n {
		paths = paths[:n]
	}
	return paths
}

func pathKey(nodes []string) string {
	return strings.Join(nodes, "\x00")
}
