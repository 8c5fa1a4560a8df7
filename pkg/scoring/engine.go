package scoring

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dd0wney/cluso-attackpath/pkg/algorithms"
	"github.com/dd0wney/cluso-attackpath/pkg/cache"
	"github.com/dd0wney/cluso-attackpath/pkg/graph"
	"github.com/dd0wney/cluso-attackpath/pkg/logging"
	"github.com/dd0wney/cluso-attackpath/pkg/metrics"
	"github.com/dd0wney/cluso-attackpath/pkg/validation"
)

// Query selects the target and bounds of an attack-path search
type Query struct {
	Target    string
	Algorithm algorithms.Algorithm
	MaxHops   int
	K         int
}

func (q Query) cacheKey(snapshot string) cache.Key {
	return cache.Key{Snapshot: snapshot, Target: q.Target, Algorithm: q.Algorithm, MaxHops: q.MaxHops, K: q.K}
}

// GraphSource supplies a full node and edge list, e.g. a provider
type GraphSource interface {
	Fetch(ctx context.Context) ([]graph.Node, []graph.Edge, error)
}

// Engine scores attack paths from every public entry point to a target.
//
// Each query runs synchronously on the caller's goroutine against one graph
// snapshot. Results are cached per (snapshot, target, algorithm, max hops,
// k) and concurrent misses for the same key share one computation.
type Engine struct {
	cfg     Config
	store   *graph.Store
	cache   *cache.ResultCache
	clock   cache.Clock
	oracle  Oracle
	logger  logging.Logger
	metrics *metrics.Registry
	flight  singleflight.Group
}

// Option configures an Engine
type Option func(*Engine)

// WithConfig replaces the default configuration
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger sets the logger; the default is logging.DefaultLogger()
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics registry; the default is metrics.DefaultRegistry()
func WithMetrics(r *metrics.Registry) Option {
	return func(e *Engine) { e.metrics = r }
}

// WithOracle enables the external algorithm
func WithOracle(o Oracle) Option {
	return func(e *Engine) { e.oracle = o }
}

// WithCache supplies a pre-built result cache, ignoring the cache settings
// in Config
func WithCache(c *cache.ResultCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithClock sets the clock used for cache expiry
func WithClock(c cache.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// NewEngine creates an engine over an empty graph
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:   DefaultConfig(),
		store: graph.NewStore(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if e.logger == nil {
		e.logger = logging.DefaultLogger()
	}
	e.logger = e.logger.With(logging.Component("attackpath"))
	if e.metrics == nil {
		e.metrics = metrics.DefaultRegistry()
	}
	if e.clock == nil {
		e.clock = cache.SystemClock{}
	}
	if e.cache == nil {
		e.cache = cache.New(e.cfg.CacheTTL, e.cfg.CacheMaxEntries, e.clock)
	}
	return e, nil
}

// Config returns the active configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Graph returns the current snapshot
func (e *Engine) Graph() *graph.Graph {
	return e.store.Current()
}

// Load replaces the graph with the given nodes and edges and clears the
// cache. On error the previous graph stays active.
func (e *Engine) Load(nodes []graph.Node, edges []graph.Edge) error {
	g, err := e.store.Load(nodes, edges)
	e.metrics.RecordGraphLoad(err)
	if err != nil {
		e.logger.Error("graph load failed", logging.Count(len(nodes)), logging.Error(err))
		return fmt.Errorf("failed to load graph: %w", err)
	}

	e.cache.Clear()
	e.metrics.RecordCacheEvent(metrics.CacheClear)
	e.metrics.SetGraphSize(g.NodeCount(), g.EdgeCount())
	e.logger.Info("graph loaded",
		logging.Snapshot(g.ID()),
		logging.Int("nodes", g.NodeCount()),
		logging.Int("edges", g.EdgeCount()),
		logging.Int("crown_jewels", len(g.CriticalNodes())))
	return nil
}

// LoadFrom fetches a graph from src and loads it
func (e *Engine) LoadFrom(ctx context.Context, src GraphSource) error {
	nodes, edges, err := src.Fetch(ctx)
	if err != nil {
		e.metrics.RecordGraphLoad(err)
		return fmt.Errorf("failed to fetch graph: %w", err)
	}
	return e.Load(nodes, edges)
}

// DefaultQuery returns a hybrid query for target using the configured
// hop and result limits
func (e *Engine) DefaultQuery(target string) Query {
	return Query{
		Target:    target,
		Algorithm: algorithms.AlgorithmHybrid,
		MaxHops:   e.cfg.DefaultMaxHops,
		K:         e.cfg.DefaultK,
	}
}

// GetAttackPaths returns up to q.K paths from public entry points to
// q.Target, highest score first. An empty slice means no path was found.
// Repeating a query within the cache TTL returns the cached result.
func (e *Engine) GetAttackPaths(ctx context.Context, q Query) ([]algorithms.AttackPath, error) {
	start := time.Now()
	alg := q.Algorithm.String()

	if err := e.validate(q); err != nil {
		e.metrics.RecordQuery(alg, metrics.StatusError, time.Since(start), 0)
		return nil, err
	}

	// Keys carry the snapshot ID so a result is only ever served for the
	// graph it was computed on
	g := e.store.Current()
	key := q.cacheKey(g.ID())
	if paths, ok := e.cache.Get(key); ok {
		e.metrics.RecordCacheEvent(metrics.CacheHit)
		e.record(alg, start, paths)
		return paths, nil
	}
	e.metrics.RecordCacheEvent(metrics.CacheMiss)

	v, _, shared := e.flight.Do(key.String(), func() (any, error) {
		// A previous flight may have filled the cache after our miss
		if paths, ok := e.cache.Get(key); ok {
			return paths, nil
		}
		paths := e.score(ctx, g, q)
		e.cache.Put(key, paths)
		// Load swaps before it clears the cache, so a swap missed by this
		// check is followed by a clear. Either way no stale entry survives.
		if e.store.Current() != g {
			e.cache.Remove(key)
		}
		return paths, nil
	})
	if shared {
		e.metrics.RecordCacheEvent(metrics.CacheShared)
	}

	paths := algorithms.ClonePaths(v.([]algorithms.AttackPath))
	e.record(alg, start, paths)
	return paths, nil
}

func (e *Engine) record(alg string, start time.Time, paths []algorithms.AttackPath) {
	status := metrics.StatusSuccess
	if len(paths) == 0 {
		status = metrics.StatusEmpty
	}
	e.metrics.RecordQuery(alg, status, time.Since(start), len(paths))
}

func (e *Engine) validate(q Query) error {
	if err := validation.ValidateQuery(&validation.QueryRequest{
		Target:  q.Target,
		MaxHops: q.MaxHops,
		K:       q.K,
	}); err != nil {
		return invalidArgument("%v", err)
	}
	if !q.Algorithm.Valid() {
		return invalidArgument("unknown algorithm %s", q.Algorithm)
	}
	if q.Algorithm == algorithms.AlgorithmExternal && e.oracle == nil {
		return unsupportedAlgorithm("%s scoring needs an oracle", q.Algorithm)
	}
	return nil
}

// score runs one uncached query against snapshot g
func (e *Engine) score(ctx context.Context, g *graph.Graph, q Query) []algorithms.AttackPath {
	log := e.logger.With(
		logging.Target(q.Target),
		logging.Algorithm(q.Algorithm.String()),
		logging.Snapshot(g.ID()),
	)
	timer := logging.StartTimer(log, "attack paths scored", logging.Hops(q.MaxHops), logging.K(q.K))

	results := []algorithms.AttackPath{}
	// Entry points never equal the target in a result, so zero hops finds nothing
	if q.K == 0 || q.MaxHops == 0 {
		timer.EndWithLevel(logging.DebugLevel, logging.Count(0))
		return results
	}
	if !g.HasNode(q.Target) {
		log.Warn("target not in graph")
		timer.End(logging.Count(0))
		return results
	}

	entries := algorithms.EntryPoints(g)
	e.metrics.SetEntryPoints(len(entries))
	if len(entries) == 0 {
		log.Info("no public entry points")
		timer.End(logging.Count(0))
		return results
	}

	f := e.finders(g)
	for _, entry := range entries {
		// A path needs at least one hop
		if entry == q.Target {
			continue
		}
		paths, err := e.scoreEntry(ctx, f, entry, q)
		if err != nil {
			e.metrics.RecordEntryPointFailure(q.Algorithm.String())
			log.Error("entry point skipped", logging.EntryPoint(entry), logging.Error(err))
			continue
		}
		log.Debug("entry point scored", logging.EntryPoint(entry), logging.Count(len(paths)))
		results = append(results, paths...)
	}

	results = algorithms.TopN(results, q.K)
	timer.End(logging.Count(len(results)), logging.Int("entry_points", len(entries)))
	return results
}

type finderSet struct {
	weighted *algorithms.WeightedPathFinder
	rank     *algorithms.PersonalizedRankFinder
	motif    *algorithms.MotifPatternFinder
	hybrid   *algorithms.EnsembleCombiner
}

func (e *Engine) finders(g *graph.Graph) finderSet {
	weighted := algorithms.NewWeightedPathFinder(g, algorithms.NewEdgeWeightCalculator()).
		WithCandidateLimit(e.cfg.MaxCandidates)
	rank := algorithms.NewPersonalizedRankFinder(g, e.cfg.PageRankOptions())
	motif := algorithms.NewMotifPatternFinder(g).WithLimits(e.cfg.TopN, e.cfg.MaxSimplePaths)
	return finderSet{
		weighted: weighted,
		rank:     rank,
		motif:    motif,
		hybrid:   algorithms.NewEnsembleCombiner(weighted, rank, motif, e.cfg.Weights).WithTopN(e.cfg.TopN),
	}
}

// scoreEntry runs the selected algorithm from one entry point. A panic is
// turned into an error so one bad entry point cannot fail the query.
func (e *Engine) scoreEntry(ctx context.Context, f finderSet, entry string, q Query) (paths []algorithms.AttackPath, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic scoring from %s: %v", entry, r)
			if q.Algorithm == algorithms.AlgorithmExternal {
				err = fmt.Errorf("%w: %w", ErrOracleFailure, err)
			}
		}
	}()

	switch q.Algorithm {
	case algorithms.AlgorithmShortest:
		return f.weighted.ShortestWithin(entry, q.Target, q.MaxHops), nil
	case algorithms.AlgorithmRank:
		return f.rank.FindPaths(entry, q.Target, q.MaxHops), nil
	case algorithms.AlgorithmMotif:
		return f.motif.FindPaths(entry, q.Target, q.MaxHops), nil
	case algorithms.AlgorithmHybrid:
		return f.hybrid.FindPaths(entry, q.Target, q.MaxHops), nil
	case algorithms.AlgorithmExternal:
		return e.scoreExternal(ctx, entry, q)
	default:
		return nil, unsupportedAlgorithm("%s", q.Algorithm)
	}
}

// scoreExternal asks the oracle and keeps only well-formed paths from entry
// to the target within the hop bound
func (e *Engine) scoreExternal(ctx context.Context, entry string, q Query) ([]algorithms.AttackPath, error) {
	raw, err := e.oracle.ScorePaths(ctx, entry, q.Target, q.MaxHops)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOracleFailure, err)
	}

	paths := make([]algorithms.AttackPath, 0, len(raw))
	for _, p := range raw {
		if !p.IsSimple() || p.Source() != entry || p.Target() != q.Target || len(p.Nodes)-1 > q.MaxHops {
			e.logger.Warn("oracle path dropped", logging.EntryPoint(entry), logging.Path(p.Nodes))
			continue
		}
		out := p.Clone()
		out.Algorithm = algorithms.AlgorithmExternal
		out.Length = len(out.Nodes) - 1
		paths = append(paths, out)
	}
	return paths, nil
}

// Clear empties the result cache
func (e *Engine) Clear() {
	e.cache.Clear()
	e.metrics.RecordCacheEvent(metrics.CacheClear)
	e.logger.Debug("result cache cleared")
}

// CrownJewels returns all critical nodes in the current graph, sorted by ID
func (e *Engine) CrownJewels() []graph.Node {
	return e.store.Current().CriticalNodes()
}

// EntryPoints returns the publicly exposed vms of the current graph
func (e *Engine) EntryPoints() []string {
	return algorithms.EntryPoints(e.store.Current())
}

// Algorithms lists the algorithms this engine can run
func (e *Engine) Algorithms() []algorithms.Algorithm {
	algs := []algorithms.Algorithm{
		algorithms.AlgorithmShortest,
		algorithms.AlgorithmRank,
		algorithms.AlgorithmMotif,
		algorithms.AlgorithmHybrid,
	}
	if e.oracle != nil {
		algs = append(algs, algorithms.AlgorithmExternal)
	}
	return algs
}

// Stats describes the engine's current state
type Stats struct {
	SnapshotID  string
	Nodes       int
	Edges       int
	CrownJewels int
	Cache       cache.Stats
	CacheTTL    time.Duration
	Oracle      bool
}

// Stats returns a snapshot of graph and cache state
func (e *Engine) Stats() Stats {
	g := e.store.Current()
	return Stats{
		SnapshotID:  g.ID(),
		Nodes:       g.NodeCount(),
		Edges:       g.EdgeCount(),
		CrownJewels: len(g.CriticalNodes()),
		Cache:       e.cache.Stats(),
		CacheTTL:    e.cache.TTL(),
		Oracle:      e.oracle != nil,
	}
}
