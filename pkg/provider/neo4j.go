package provider

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dd0wney/cluso-attackpath/pkg/graph"
	"github.com/dd0wney/cluso-attackpath/pkg/logging"
	"github.com/dd0wney/cluso-attackpath/pkg/validation"
)

// Read-only queries over the inventory layout. Vulnerability nodes are
// keyed by cve, everything else by id.
const (
	nodesQuery = `
		MATCH (n)
		WHERE n.id IS NOT NULL OR n.cve IS NOT NULL
		RETURN labels(n) AS labels, properties(n) AS props`

	edgesQuery = `
		MATCH (a)-[r]->(b)
		RETURN coalesce(a.id, a.cve) AS source,
		       coalesce(b.id, b.cve) AS target,
		       type(r) AS relation,
		       properties(r) AS props`
)

// Runner executes a Cypher query and buffers the whole result
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Neo4jConfig holds connection settings
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Neo4jExecutor runs queries through the official driver
type Neo4jExecutor struct {
	Driver   neo4j.DriverWithContext
	Database string
}

// NewNeo4jExecutor creates a driver for cfg. The connection is not checked
// until Verify or the first query.
func NewNeo4jExecutor(cfg Neo4jConfig) (*Neo4jExecutor, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create neo4j driver: %w", err)
	}
	return &Neo4jExecutor{Driver: driver, Database: cfg.Database}, nil
}

// Verify checks connectivity
func (e *Neo4jExecutor) Verify(ctx context.Context) error {
	return e.Driver.VerifyConnectivity(ctx)
}

// Run implements Runner. Queries are routed to readers.
func (e *Neo4jExecutor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, e.Driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.Database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return result, nil
}

// Close releases the driver
func (e *Neo4jExecutor) Close(ctx context.Context) error {
	return e.Driver.Close(ctx)
}

// Neo4jProvider reads the whole graph from Neo4j
type Neo4jProvider struct {
	runner Runner
	logger logging.Logger
}

// NewNeo4jProvider creates a provider on top of runner. A nil logger
// discards output.
func NewNeo4jProvider(runner Runner, logger logging.Logger) *Neo4jProvider {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Neo4jProvider{runner: runner, logger: logger.With(logging.Component("neo4j_provider"))}
}

// Fetch implements Provider
func (p *Neo4jProvider) Fetch(ctx context.Context) ([]graph.Node, []graph.Edge, error) {
	timer := logging.StartTimer(p.logger, "graph fetched from neo4j")

	nodeResult, err := p.runner.Run(ctx, nodesQuery, nil)
	if err != nil {
		timer.EndError(err)
		return nil, nil, fmt.Errorf("failed to fetch nodes: %w", err)
	}
	nodes := make([]validation.NodeRecord, 0, len(nodeResult.Records))
	for i, record := range nodeResult.Records {
		rec, err := nodeFromRecord(record)
		if err != nil {
			timer.EndError(err)
			return nil, nil, fmt.Errorf("node record %d: %w", i, err)
		}
		nodes = append(nodes, rec)
	}

	edgeResult, err := p.runner.Run(ctx, edgesQuery, nil)
	if err != nil {
		timer.EndError(err)
		return nil, nil, fmt.Errorf("failed to fetch edges: %w", err)
	}
	edges := make([]validation.EdgeRecord, 0, len(edgeResult.Records))
	for i, record := range edgeResult.Records {
		rec, err := edgeFromRecord(record)
		if err != nil {
			timer.EndError(err)
			return nil, nil, fmt.Errorf("edge record %d: %w", i, err)
		}
		edges = append(edges, rec)
	}

	gNodes, gEdges, err := ToGraph(nodes, edges)
	if err != nil {
		timer.EndError(err)
		return nil, nil, err
	}
	timer.End(logging.Int("nodes", len(gNodes)), logging.Int("edges", len(gEdges)))
	return gNodes, gEdges, nil
}

func nodeFromRecord(record *neo4j.Record) (validation.NodeRecord, error) {
	rawLabels, ok := record.Get("labels")
	if !ok {
		return validation.NodeRecord{}, fmt.Errorf("missing column 'labels'")
	}
	props, err := propsOf(record)
	if err != nil {
		return validation.NodeRecord{}, err
	}

	label := LabelAsset
	labels, _ := rawLabels.([]any)
	for _, l := range labels {
		if name := graph.String(l); name != "" {
			if _, known := labelTypes[name]; known {
				label = name
				break
			}
		}
	}
	return inventoryNode(label, props), nil
}

func edgeFromRecord(record *neo4j.Record) (validation.EdgeRecord, error) {
	props, err := propsOf(record)
	if err != nil {
		return validation.EdgeRecord{}, err
	}
	rec := validation.EdgeRecord{Properties: props}
	for key, dst := range map[string]*string{"source": &rec.Source, "target": &rec.Target, "relation": &rec.Relation} {
		v, ok := record.Get(key)
		if !ok {
			return validation.EdgeRecord{}, fmt.Errorf("missing column '%s'", key)
		}
		*dst = graph.String(v)
	}
	return rec, nil
}

func propsOf(record *neo4j.Record) (map[string]any, error) {
	raw, ok := record.Get("props")
	if !ok {
		return nil, fmt.Errorf("missing column 'props'")
	}
	if raw == nil {
		return nil, nil
	}
	props, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("column 'props' is %T, not a map", raw)
	}
	if len(props) == 0 {
		return nil, nil
	}
	return props, nil
}
