package graph

import (
	"fmt"
	"strings"
)

// NodeType classifies an infrastructure asset
type NodeType string

const (
	NodeVM            NodeType = "vm"
	NodeDB            NodeType = "db"
	NodeBucket        NodeType = "bucket"
	NodeSecurityGroup NodeType = "security_group"
	NodeSubnet        NodeType = "subnet"
	NodeUser          NodeType = "user"
	NodeRole          NodeType = "role"
	NodePolicy        NodeType = "policy"
	NodeCIJob         NodeType = "ci_job"
	NodeVPN           NodeType = "vpn"
	NodeDomain        NodeType = "domain"
	NodeSoftware      NodeType = "software"
	NodeVulnerability NodeType = "vulnerability"
	NodeFinding       NodeType = "finding"
	NodeControl       NodeType = "control"
	NodeTag           NodeType = "tag"
)

var nodeTypes = map[NodeType]bool{
	NodeVM: true, NodeDB: true, NodeBucket: true, NodeSecurityGroup: true,
	NodeSubnet: true, NodeUser: true, NodeRole: true, NodePolicy: true,
	NodeCIJob: true, NodeVPN: true, NodeDomain: true, NodeSoftware: true,
	NodeVulnerability: true, NodeFinding: true, NodeControl: true, NodeTag: true,
}

// nodeTypeAliases maps shorthand used by inventory exports onto canonical types
var nodeTypeAliases = map[string]NodeType{
	"sg":   NodeSecurityGroup,
	"vuln": NodeVulnerability,
}

// Valid reports whether t is one of the known node types
func (t NodeType) Valid() bool {
	return nodeTypes[t]
}

// ParseNodeType converts a case-insensitive name into a NodeType
func ParseNodeType(s string) (NodeType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := nodeTypeAliases[name]; ok {
		return alias, nil
	}
	t := NodeType(name)
	if !t.Valid() {
		return "", fmt.Errorf("unknown node type %q", s)
	}
	return t, nil
}

// RelationType is the semantic type of a directed edge
type RelationType string

const (
	RelConnectsTo RelationType = "CONNECTS_TO"
	RelRuns       RelationType = "RUNS"
	RelHasVuln    RelationType = "HAS_VULN"
	RelAllows     RelationType = "ALLOWS"
	RelAssumes    RelationType = "ASSUMES"
	RelAppliesTo  RelationType = "APPLIES_TO"
	RelHasFinding RelationType = "HAS_FINDING"
	RelTagged     RelationType = "TAGGED"
)

var relationTypes = map[RelationType]bool{
	RelConnectsTo: true, RelRuns: true, RelHasVuln: true, RelAllows: true,
	RelAssumes: true, RelAppliesTo: true, RelHasFinding: true, RelTagged: true,
}

// Valid reports whether r is one of the known relation types
func (r RelationType) Valid() bool {
	return relationTypes[r]
}

// ParseRelationType converts a case-insensitive name into a RelationType
func ParseRelationType(s string) (RelationType, error) {
	r := RelationType(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown relation type %q", s)
	}
	return r, nil
}

// Node is an asset in the infrastructure graph
type Node struct {
	ID         string
	Type       NodeType
	Critical   bool // crown jewel
	Attributes map[string]any
}

// Attr returns a node attribute
func (n Node) Attr(key string) (any, bool) {
	v, ok := n.Attributes[key]
	return v, ok
}

// Edge is a directed, typed relationship between two nodes.
// Parallel edges between the same pair are kept separately.
type Edge struct {
	SourceID   string
	TargetID   string
	Relation   RelationType
	Properties map[string]any
}

// Prop returns an edge property
func (e *Edge) Prop(key string) (any, bool) {
	v, ok := e.Properties[key]
	return v, ok
}
