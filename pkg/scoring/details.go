package scoring

import (
	"sort"

	"github.com/dd0wney/cluso-attackpath/pkg/algorithms"
	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

// Node attributes read for path details
const (
	AttrCVE  = "cve"
	AttrCVSS = "cvss"
)

// HopDetail describes one step of an attack path
type HopDetail struct {
	Source     string
	Target     string
	SourceType graph.NodeType
	TargetType graph.NodeType
	Relations  []graph.RelationType // every parallel edge, in insertion order
	Weight     float64              // lightest parallel edge
}

// VulnerabilityDetail is a vulnerability on software run by a path node
type VulnerabilityDetail struct {
	ID               string
	CVE              string
	CVSS             float64
	ExploitAvailable bool
	Host             string // path node that RUNS the vulnerable software
	Software         string
}

// PathDetails is the structured context an explanation layer needs
type PathDetails struct {
	Nodes           []graph.Node
	Hops            []HopDetail
	Vulnerabilities []VulnerabilityDetail // highest CVSS first
	EntryPoint      bool                  // first node is publicly exposed
	CriticalTarget  bool
	TotalWeight     float64
}

// Details resolves a path against the current graph. Nodes missing from the
// graph (e.g. after a reload) are skipped.
func (e *Engine) Details(path algorithms.AttackPath) PathDetails {
	return Details(e.store.Current(), path)
}

// Details resolves a path against g
func Details(g *graph.Graph, path algorithms.AttackPath) PathDetails {
	d := PathDetails{}
	if len(path.Nodes) == 0 {
		return d
	}

	weigher := algorithms.NewEdgeWeightCalculator()
	for _, id := range path.Nodes {
		if n, ok := g.Node(id); ok {
			d.Nodes = append(d.Nodes, n)
		}
	}

	for i := 0; i+1 < len(path.Nodes); i++ {
		src, dst := path.Nodes[i], path.Nodes[i+1]
		hop := HopDetail{Source: src, Target: dst}
		if n, ok := g.Node(src); ok {
			hop.SourceType = n.Type
		}
		if n, ok := g.Node(dst); ok {
			hop.TargetType = n.Type
		}
		for j, edge := range g.EdgesBetween(src, dst) {
			hop.Relations = append(hop.Relations, edge.Relation)
			if w := weigher.Weight(edge); j == 0 || w < hop.Weight {
				hop.Weight = w
			}
		}
		d.TotalWeight += hop.Weight
		d.Hops = append(d.Hops, hop)
	}

	d.Vulnerabilities = pathVulnerabilities(g, path.Nodes)
	d.EntryPoint = algorithms.IsPubliclyExposed(g, path.Source())
	if n, ok := g.Node(path.Target()); ok {
		d.CriticalTarget = n.Critical
	}
	return d
}

func pathVulnerabilities(g *graph.Graph, nodes []string) []VulnerabilityDetail {
	var vulns []VulnerabilityDetail
	seen := make(map[string]bool)

	for _, host := range nodes {
		for _, runs := range g.OutEdges(host) {
			if runs.Relation != graph.RelRuns {
				continue
			}
			for _, hv := range g.OutEdges(runs.TargetID) {
				if hv.Relation != graph.RelHasVuln || seen[hv.TargetID] {
					continue
				}
				seen[hv.TargetID] = true
				vulns = append(vulns, vulnerabilityDetail(g, host, runs.TargetID, hv))
			}
		}
	}

	sort.SliceStable(vulns, func(i, j int) bool { return vulns[i].CVSS > vulns[j].CVSS })
	return vulns
}

func vulnerabilityDetail(g *graph.Graph, host, software string, hv *graph.Edge) VulnerabilityDetail {
	v := VulnerabilityDetail{ID: hv.TargetID, CVE: hv.TargetID, Host: host, Software: software}
	if flag, ok := hv.Prop(algorithms.PropExploitAvailable); ok && graph.Bool(flag) {
		v.ExploitAvailable = true
	}

	node, ok := g.Node(hv.TargetID)
	if !ok {
		return v
	}
	if cve := graph.String(node.Attributes[AttrCVE]); cve != "" {
		v.CVE = cve
	}
	if cvss, ok := graph.Float(node.Attributes[AttrCVSS]); ok {
		v.CVSS = cvss
	}
	if flag, ok := node.Attr(algorithms.PropExploitAvailable); ok && graph.Bool(flag) {
		v.ExploitAvailable = true
	}
	return v
}
