package algorithms

import (
	"sort"
	"strings"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

// PublicCIDR is the any-address ingress range
const PublicCIDR = "0.0.0.0/0"

// PropCIDR is the property or attribute holding an ingress range
const PropCIDR = "cidr"

// EntryPoints returns every vm that a security group with an
// ALLOWS 0.0.0.0/0 ingress rule APPLIES_TO, sorted by ID. An empty result
// means nothing is publicly exposed.
func EntryPoints(g *graph.Graph) []string {
	seen := make(map[string]bool)
	var entries []string

	for _, id := range g.NodeIDs() {
		sg, _ := g.Node(id)
		if sg.Type != graph.NodeSecurityGroup || !allowsPublicIngress(g, id) {
			continue
		}
		for _, e := range g.OutEdges(id) {
			if e.Relation != graph.RelAppliesTo || seen[e.TargetID] {
				continue
			}
			if vm, ok := g.Node(e.TargetID); ok && vm.Type == graph.NodeVM {
				seen[e.TargetID] = true
				entries = append(entries, e.TargetID)
			}
		}
	}

	sort.Strings(entries)
	return entries
}

// IsEntryPoint reports whether a vm is exposed through a public security group
func IsEntryPoint(g *graph.Graph, vmID string) bool {
	vm, ok := g.Node(vmID)
	if !ok || vm.Type != graph.NodeVM {
		return false
	}
	for _, e := range g.InEdges(vmID) {
		if e.Relation != graph.RelAppliesTo {
			continue
		}
		if sg, ok := g.Node(e.SourceID); ok && sg.Type == graph.NodeSecurityGroup && allowsPublicIngress(g, e.SourceID) {
			return true
		}
	}
	return false
}

// IsPubliclyExposed reports whether a node is reachable from the internet:
// it touches an ALLOWS edge for 0.0.0.0/0 directly, or it is an entry point.
func IsPubliclyExposed(g *graph.Graph, id string) bool {
	for _, e := range g.OutEdges(id) {
		if e.Relation == graph.RelAllows && isPublicRule(g, e, e.TargetID) {
			return true
		}
	}
	for _, e := range g.InEdges(id) {
		if e.Relation == graph.RelAllows && isPublicRule(g, e, e.SourceID) {
			return true
		}
	}
	return IsEntryPoint(g, id)
}

func allowsPublicIngress(g *graph.Graph, sgID string) bool {
	for _, e := range g.OutEdges(sgID) {
		if e.Relation == graph.RelAllows && isPublicRule(g, e, e.TargetID) {
			return true
		}
	}
	return false
}

// isPublicRule checks the range on the ALLOWS edge itself, then on the rule node
func isPublicRule(g *graph.Graph, e *graph.Edge, ruleID string) bool {
	if v, ok := e.Prop(PropCIDR); ok && isPublicCIDR(v) {
		return true
	}
	if rule, ok := g.Node(ruleID); ok {
		if v, ok := rule.Attr(PropCIDR); ok && isPublicCIDR(v) {
			return true
		}
	}
	return false
}

func isPublicCIDR(v any) bool {
	return strings.TrimSpace(graph.String(v)) == PublicCIDR
}
