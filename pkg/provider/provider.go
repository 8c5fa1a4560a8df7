// Package provider supplies the full node and edge list of the
// infrastructure graph from an external source.
package provider

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
	"github.com/dd0wney/cluso-attackpath/pkg/validation"
)

// Provider fetches a complete graph. Every call returns the whole graph;
// updates are applied by fetching again and reloading.
type Provider interface {
	Fetch(ctx context.Context) ([]graph.Node, []graph.Edge, error)
}

// ToGraph validates provider records and converts them to graph types.
// The first invalid record aborts the conversion.
func ToGraph(nodes []validation.NodeRecord, edges []validation.EdgeRecord) ([]graph.Node, []graph.Edge, error) {
	outNodes := make([]graph.Node, 0, len(nodes))
	for i := range nodes {
		n, err := toNode(&nodes[i])
		if err != nil {
			return nil, nil, err
		}
		outNodes = append(outNodes, n)
	}

	outEdges := make([]graph.Edge, 0, len(edges))
	for i := range edges {
		e, err := toEdge(&edges[i])
		if err != nil {
			return nil, nil, err
		}
		outEdges = append(outEdges, e)
	}
	return outNodes, outEdges, nil
}

func toNode(rec *validation.NodeRecord) (graph.Node, error) {
	if err := validation.ValidateNodeRecord(rec); err != nil {
		return graph.Node{}, fmt.Errorf("%w: %w", graph.ErrInvalidNode, err)
	}
	t, err := graph.ParseNodeType(rec.Type)
	if err != nil {
		return graph.Node{}, fmt.Errorf("%w: %w", graph.ErrInvalidNode, err)
	}
	return graph.Node{ID: rec.ID, Type: t, Critical: rec.Critical, Attributes: rec.Attributes}, nil
}

func toEdge(rec *validation.EdgeRecord) (graph.Edge, error) {
	if err := validation.ValidateEdgeRecord(rec); err != nil {
		return graph.Edge{}, fmt.Errorf("%w: %w", graph.ErrInvalidEdge, err)
	}
	rel, err := graph.ParseRelationType(rec.Relation)
	if err != nil {
		return graph.Edge{}, fmt.Errorf("%w: %w", graph.ErrInvalidEdge, err)
	}
	return graph.Edge{SourceID: rec.Source, TargetID: rec.Target, Relation: rel, Properties: rec.Properties}, nil
}
