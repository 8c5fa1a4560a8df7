package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
	"github.com/dd0wney/cluso-attackpath/pkg/logging"
	"github.com/dd0wney/cluso-attackpath/pkg/validation"
)

// Document is a graph file. It holds either explicit nodes and edges, or
// the inventory layout with one list per label plus relationships. Both
// may be mixed in one file. JSON documents decode as YAML.
type Document struct {
	Nodes []validation.NodeRecord `yaml:"nodes"`
	Edges []validation.EdgeRecord `yaml:"edges"`

	Assets          []map[string]any `yaml:"assets"`
	Software        []map[string]any `yaml:"software"`
	Vulnerabilities []map[string]any `yaml:"vulnerabilities"`
	Findings        []map[string]any `yaml:"findings"`
	Controls        []map[string]any `yaml:"controls"`
	Tags            []map[string]any `yaml:"tags"`
	Relationships   []Relationship   `yaml:"relationships"`
}

// Relationship is an edge in the inventory layout
type Relationship struct {
	Type       string         `yaml:"type"`
	SourceID   string         `yaml:"source_id"`
	TargetID   string         `yaml:"target_id"`
	Properties map[string]any `yaml:"properties"`
}

// Decode reads a Document from r. An empty input is an empty document.
func Decode(r io.Reader) (*Document, error) {
	doc := &Document{}
	if err := yaml.NewDecoder(r).Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode graph document: %w", err)
	}
	return doc, nil
}

// Records flattens the document into node and edge records, explicit
// entries first
func (d *Document) Records() ([]validation.NodeRecord, []validation.EdgeRecord) {
	nodes := append([]validation.NodeRecord(nil), d.Nodes...)
	for _, group := range []struct {
		label string
		items []map[string]any
	}{
		{LabelAsset, d.Assets},
		{LabelSoftware, d.Software},
		{LabelVulnerability, d.Vulnerabilities},
		{LabelFinding, d.Findings},
		{LabelControl, d.Controls},
		{LabelTag, d.Tags},
	} {
		for _, props := range group.items {
			nodes = append(nodes, inventoryNode(group.label, props))
		}
	}

	edges := append([]validation.EdgeRecord(nil), d.Edges...)
	for _, rel := range d.Relationships {
		edges = append(edges, validation.EdgeRecord{
			Source:     rel.SourceID,
			Target:     rel.TargetID,
			Relation:   rel.Type,
			Properties: rel.Properties,
		})
	}
	return nodes, edges
}

// FileProvider reads the graph from a YAML or JSON file on every Fetch
type FileProvider struct {
	path   string
	logger logging.Logger
}

// NewFileProvider creates a provider for path. A nil logger discards output.
func NewFileProvider(path string, logger logging.Logger) *FileProvider {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &FileProvider{path: path, logger: logger.With(logging.Component("file_provider"))}
}

// Fetch implements Provider
func (p *FileProvider) Fetch(ctx context.Context) ([]graph.Node, []graph.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read graph file %s: %w", p.path, err)
	}

	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", p.path, err)
	}

	nodes, edges, err := ToGraph(doc.Records())
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", p.path, err)
	}

	p.logger.Info("graph file read",
		logging.String("path", p.path),
		logging.Int("nodes", len(nodes)),
		logging.Int("edges", len(edges)))
	return nodes, edges, nil
}
