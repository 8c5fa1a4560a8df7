package provider

import (
	"github.com/dd0wney/cluso-attackpath/pkg/graph"
	"github.com/dd0wney/cluso-attackpath/pkg/validation"
)

// Labels of the inventory layout. Assets carry their own type property;
// every other label maps to one node type.
const (
	LabelAsset         = "Asset"
	LabelSoftware      = "Software"
	LabelVulnerability = "Vuln"
	LabelFinding       = "Finding"
	LabelControl       = "Control"
	LabelTag           = "Tag"
)

var labelTypes = map[string]graph.NodeType{
	LabelSoftware:      graph.NodeSoftware,
	LabelVulnerability: graph.NodeVulnerability,
	LabelFinding:       graph.NodeFinding,
	LabelControl:       graph.NodeControl,
	LabelTag:           graph.NodeTag,
}

// inventoryNode builds a node record from a labelled property map.
// Vulnerabilities are keyed by cve when they have no id.
func inventoryNode(label string, props map[string]any) validation.NodeRecord {
	rec := validation.NodeRecord{
		ID:       graph.String(props["id"]),
		Critical: graph.Bool(props["critical"]),
	}
	if rec.ID == "" {
		rec.ID = graph.String(props["cve"])
	}

	skip := map[string]bool{"id": true, "critical": true}
	if t, ok := labelTypes[label]; ok {
		rec.Type = string(t)
	} else {
		rec.Type = graph.String(props["type"])
		skip["type"] = true
	}

	for k, v := range props {
		if skip[k] || v == nil {
			continue
		}
		if rec.Attributes == nil {
			rec.Attributes = make(map[string]any, len(props))
		}
		rec.Attributes[k] = v
	}
	return rec
}
