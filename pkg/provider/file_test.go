package provider

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
)

const explicitYAML = `
nodes:
  - id: sg-web
    type: sg
  - id: ingress
    type: control
    attributes:
      cidr: 0.0.0.0/0
  - id: vm-1
    type: vm
  - id: db-1
    type: db
    critical: true
edges:
  - {source: sg-web, target: ingress, relation: ALLOWS}
  - {source: sg-web, target: vm-1, relation: APPLIES_TO}
  - source: vm-1
    target: db-1
    relation: CONNECTS_TO
    properties:
      exploitability: 0.8
      exposure: 1
`

const inventoryJSON = `{
  "assets": [
    {"id": "asset-001", "type": "vm", "critical": false, "region": "us-east-1"},
    {"id": "asset-002", "type": "db", "critical": true}
  ],
  "software": [{"id": "software-001", "name": "log4j", "version": "2.14.1"}],
  "vulnerabilities": [{"cve": "CVE-2021-44228", "cvss": 10.0, "exploit_available": true}],
  "relationships": [
    {"type": "RUNS", "source_id": "asset-001", "target_id": "software-001"},
    {"type": "HAS_VULN", "source_id": "software-001", "target_id": "CVE-2021-44228"},
    {"type": "CONNECTS_TO", "source_id": "asset-001", "target_id": "asset-002", "properties": {"exposure": 0.9}}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileProvider_ExplicitLayout(t *testing.T) {
	p := NewFileProvider(writeFile(t, "graph.yaml", explicitYAML), nil)

	nodes, edges, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 4)
	require.Len(t, edges, 3)

	g, err := graph.Build(nodes, edges)
	require.NoError(t, err)
	assert.Len(t, g.CriticalNodes(), 1)

	e := g.EdgesBetween("vm-1", "db-1")
	require.Len(t, e, 1)
	v, ok := graph.Float(e[0].Properties["exposure"])
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestFileProvider_InventoryLayout(t *testing.T) {
	p := NewFileProvider(writeFile(t, "inventory.json", inventoryJSON), nil)

	nodes, edges, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 4)
	require.Len(t, edges, 3)

	g, err := graph.Build(nodes, edges)
	require.NoError(t, err)

	vuln, ok := g.Node("CVE-2021-44228")
	require.True(t, ok)
	assert.Equal(t, graph.NodeVulnerability, vuln.Type)
	cvss, ok := graph.Float(vuln.Attributes["cvss"])
	require.True(t, ok)
	assert.Equal(t, 10.0, cvss)

	db, _ := g.Node("asset-002")
	assert.True(t, db.Critical)
}

func TestFileProvider_Errors(t *testing.T) {
	_, _, err := NewFileProvider(filepath.Join(t.TempDir(), "missing.yaml"), nil).Fetch(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = NewFileProvider(writeFile(t, "bad.yaml", "nodes: {id: ["), nil).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")

	badType := "nodes:\n  - id: x\n    type: mainframe\n"
	_, _, err = NewFileProvider(writeFile(t, "type.yaml", badType), nil).Fetch(context.Background())
	assert.ErrorIs(t, err, graph.ErrInvalidNode)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = NewFileProvider(writeFile(t, "ok.yaml", explicitYAML), nil).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecode_Empty(t *testing.T) {
	doc, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	nodes, edges := doc.Records()
	assert.Empty(t, nodes)
	assert.Empty(t, edges)
}
