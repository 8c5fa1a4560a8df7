package algorithms

import (
	"math"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

// Built-in motif names
const (
	MotifPublicVulnLateral   = "public_vuln_lateral"
	MotifPrivilegeEscalation = "privilege_escalation"
	MotifDataExfiltration    = "data_exfiltration"
)

// PropExploitAvailable marks a vulnerability with a public exploit
const PropExploitAvailable = "exploit_available"

// MotifDetector recognises an attack pattern on a single hop
type MotifDetector struct {
	Name  string
	Match func(g *graph.Graph, source, target graph.Node) bool
}

// DefaultMotifDetectors returns the built-in detectors
func DefaultMotifDetectors() []MotifDetector {
	return []MotifDetector{
		{Name: MotifPublicVulnLateral, Match: detectPublicVulnLateral},
		{Name: MotifPrivilegeEscalation, Match: detectPrivilegeEscalation},
		{Name: MotifDataExfiltration, Match: detectDataExfiltration},
	}
}

// public-facing vm with an exploitable vuln moving to compute or data
func detectPublicVulnLateral(g *graph.Graph, source, target graph.Node) bool {
	if source.Type != graph.NodeVM {
		return false
	}
	switch target.Type {
	case graph.NodeVM, graph.NodeDB, graph.NodeBucket:
	default:
		return false
	}
	return IsPubliclyExposed(g, source.ID) && HasExploitableVulnerability(g, source.ID)
}

// user -> role or role -> policy
func detectPrivilegeEscalation(_ *graph.Graph, source, target graph.Node) bool {
	return (source.Type == graph.NodeUser && target.Type == graph.NodeRole) ||
		(source.Type == graph.NodeRole && target.Type == graph.NodePolicy)
}

// database flowing into a critical bucket or vm
func detectDataExfiltration(_ *graph.Graph, source, target graph.Node) bool {
	if source.Type != graph.NodeDB || !target.Critical {
		return false
	}
	return target.Type == graph.NodeBucket || target.Type == graph.NodeVM
}

// HasExploitableVulnerability reports whether a node RUNS software that
// HAS_VULN with exploit_available set, on the edge or the vulnerability node.
func HasExploitableVulnerability(g *graph.Graph, id string) bool {
	return len(ExploitableVulnerabilities(g, id)) > 0
}

// ExploitableVulnerabilities lists vulnerability IDs reachable through
// RUNS -> software -> HAS_VULN that have a public exploit.
func ExploitableVulnerabilities(g *graph.Graph, id string) []string {
	var vulns []string
	seen := make(map[string]bool)
	for _, runs := range g.OutEdges(id) {
		if runs.Relation != graph.RelRuns {
			continue
		}
		for _, hv := range g.OutEdges(runs.TargetID) {
			if hv.Relation != graph.RelHasVuln || seen[hv.TargetID] {
				continue
			}
			if exploitAvailable(g, hv) {
				seen[hv.TargetID] = true
				vulns = append(vulns, hv.TargetID)
			}
		}
	}
	return vulns
}

func exploitAvailable(g *graph.Graph, e *graph.Edge) bool {
	if v, ok := e.Prop(PropExploitAvailable); ok && graph.Bool(v) {
		return true
	}
	vuln, ok := g.Node(e.TargetID)
	if !ok {
		return false
	}
	v, ok := vuln.Attr(PropExploitAvailable)
	return ok && graph.Bool(v)
}

// MotifPatternFinder scores simple paths by how many of their hops match an
// attack-pattern detector, penalised by path length.
type MotifPatternFinder struct {
	graph     *graph.Graph
	detectors []MotifDetector
	topN      int
	maxPaths  int
}

// NewMotifPatternFinder creates a finder using the given detectors, or the
// built-in set when none are supplied
func NewMotifPatternFinder(g *graph.Graph, detectors ...MotifDetector) *MotifPatternFinder {
	if len(detectors) == 0 {
		detectors = DefaultMotifDetectors()
	}
	return &MotifPatternFinder{
		graph:     g,
		detectors: detectors,
		topN:      DefaultTopN,
	}
}

// WithLimits overrides how many paths are returned and enumerated. By
// default every simple path within the hop bound is scored; a positive
// maxPaths trades that for bounded work on dense graphs.
func (f *MotifPatternFinder) WithLimits(topN, maxPaths int) *MotifPatternFinder {
	f.topN = topN
	f.maxPaths = maxPaths
	return f
}

// FindPaths returns the top simple paths by
//
//	motif_score = matches / max(1, hops)
//	score       = motif_score / (1 + node_count)
//
// A path with no matches scores 0 and is still returned.
func (f *MotifPatternFinder) FindPaths(source, target string, maxHops int) []AttackPath {
	paths := AllSimplePaths(f.graph, source, target, maxHops, f.maxPaths)
	if len(paths) == 0 {
		return []AttackPath{}
	}

	results := make([]AttackPath, 0, len(paths))
	for _, nodes := range paths {
		matches := f.match(nodes)
		hops := len(nodes) - 1
		motifScore := float64(len(matches)) / math.Max(1, float64(hops))
		score := motifScore * (1.0 / (1.0 + float64(len(nodes))))

		p := NewAttackPath(nodes, AlgorithmMotif, score)
		p.MotifScore = motifScore
		p.Motifs = matches
		results = append(results, p)
	}

	return TopN(results, f.topN)
}

// match runs every detector on every hop; one hop may match several motifs
func (f *MotifPatternFinder) match(nodes []string) []MotifMatch {
	var matches []MotifMatch
	for i := 0; i+1 < len(nodes); i++ {
		source, ok := f.graph.Node(nodes[i])
		if !ok {
			continue
		}
		target, ok := f.graph.Node(nodes[i+1])
		if !ok {
			continue
		}
		for _, d := range f.detectors {
			if d.Match(f.graph, source, target) {
				matches = append(matches, MotifMatch{Hop: i, Source: source.ID, Target: target.ID, Motif: d.Name})
			}
		}
	}
	return matches
}
