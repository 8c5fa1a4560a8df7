package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

// fakeRunner answers the node and edge queries with canned results
type fakeRunner struct {
	nodes   *neo4j.EagerResult
	edges   *neo4j.EagerResult
	err     error
	queries []string
}

func (f *fakeRunner) Run(_ context.Context, query string, _ map[string]any) (*neo4j.EagerResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if query == nodesQuery {
		return f.nodes, nil
	}
	return f.edges, nil
}

func result(keys []string, rows ...[]any) *neo4j.EagerResult {
	r := &neo4j.EagerResult{Keys: keys}
	for _, row := range rows {
		r.Records = append(r.Records, &neo4j.Record{Keys: keys, Values: row})
	}
	return r
}

var (
	nodeKeys = []string{"labels", "props"}
	edgeKeys = []string{"source", "target", "relation", "props"}
)

func TestNeo4jProvider_Fetch(t *testing.T) {
	runner := &fakeRunner{
		nodes: result(nodeKeys,
			[]any{[]any{"Asset"}, map[string]any{"id": "asset-001", "type": "vm", "critical": false}},
			[]any{[]any{"Asset"}, map[string]any{"id": "asset-002", "type": "db", "critical": true}},
			[]any{[]any{"Software"}, map[string]any{"id": "software-001", "name": "log4j"}},
			[]any{[]any{"Vuln"}, map[string]any{"cve": "CVE-2021-44228", "cvss": 10.0, "exploit_available": true}},
		),
		edges: result(edgeKeys,
			[]any{"asset-001", "software-001", "RUNS", map[string]any{}},
			[]any{"software-001", "CVE-2021-44228", "HAS_VULN", nil},
			[]any{"asset-001", "asset-002", "CONNECTS_TO", map[string]any{"exploitability": int64(1)}},
		),
	}

	nodes, edges, err := NewNeo4jProvider(runner, nil).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{nodesQuery, edgesQuery}, runner.queries)

	require.Len(t, nodes, 4)
	assert.Equal(t, graph.NodeVM, nodes[0].Type)
	assert.True(t, nodes[1].Critical)
	assert.Equal(t, graph.NodeSoftware, nodes[2].Type)
	assert.Equal(t, "CVE-2021-44228", nodes[3].ID)
	assert.Equal(t, graph.NodeVulnerability, nodes[3].Type)

	require.Len(t, edges, 3)
	assert.Nil(t, edges[0].Properties)
	assert.Equal(t, graph.RelHasVuln, edges[1].Relation)
	f, ok := graph.Float(edges[2].Properties["exploitability"])
	require.True(t, ok)
	assert.Equal(t, 1.0, f)

	_, err = graph.Build(nodes, edges)
	assert.NoError(t, err)
}

func TestNeo4jProvider_Errors(t *testing.T) {
	t.Run("query failure", func(t *testing.T) {
		boom := errors.New("service unavailable")
		_, _, err := NewNeo4jProvider(&fakeRunner{err: boom}, nil).Fetch(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("missing column", func(t *testing.T) {
		runner := &fakeRunner{nodes: result([]string{"props"}, []any{map[string]any{"id": "x"}})}
		_, _, err := NewNeo4jProvider(runner, nil).Fetch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "labels")
	})

	t.Run("props not a map", func(t *testing.T) {
		runner := &fakeRunner{
			nodes: result(nodeKeys),
			edges: result(edgeKeys, []any{"a", "b", "RUNS", "oops"}),
		}
		_, _, err := NewNeo4jProvider(runner, nil).Fetch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a map")
	})

	t.Run("unknown asset type", func(t *testing.T) {
		runner := &fakeRunner{
			nodes: result(nodeKeys, []any{[]any{"Asset"}, map[string]any{"id": "x", "type": "mainframe"}}),
			edges: result(edgeKeys),
		}
		_, _, err := NewNeo4jProvider(runner, nil).Fetch(context.Background())
		assert.ErrorIs(t, err, graph.ErrInvalidNode)
	})
}
