package scoring

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-attackpath/pkg/algorithms"
	"github.com/dd0wney/cluso-attackpath/pkg/cache"
	"github.com/dd0wney/cluso-attackpath/pkg/validation"
)

// Config holds the engine's tunables
type Config struct {
	// Personalized PageRank
	DampingFactor float64 `yaml:"damping_factor"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`

	// Hybrid scoring
	Weights algorithms.EnsembleWeights `yaml:"ensemble_weights"`

	// Result cache
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	CacheMaxEntries int           `yaml:"cache_max_entries"`

	// Query defaults and bounds
	DefaultMaxHops int `yaml:"default_max_hops"`
	DefaultK       int `yaml:"default_k"`
	TopN           int `yaml:"top_n"`            // paths kept per finder and entry point
	MaxCandidates  int `yaml:"max_candidates"`   // paths emitted by the K-shortest search, 0 = unlimited
	MaxSimplePaths int `yaml:"max_simple_paths"` // paths scored by rank and motif, 0 = every path
}

// DefaultConfig returns the standard settings
func DefaultConfig() Config {
	pr := algorithms.DefaultPageRankOptions()
	return Config{
		DampingFactor:   pr.DampingFactor,
		MaxIterations:   pr.MaxIterations,
		Tolerance:       pr.Tolerance,
		Weights:         algorithms.DefaultEnsembleWeights(),
		CacheTTL:        cache.DefaultTTL,
		CacheMaxEntries: cache.DefaultMaxEntries,
		DefaultMaxHops:  4,
		DefaultK:        5,
		TopN:            algorithms.DefaultTopN,
		MaxCandidates:   algorithms.DefaultMaxEnumeratedPaths,
	}
}

// Validate checks every field and reports all problems at once
func (c Config) Validate() error {
	err := validation.NewConfigValidator("Config").
		OpenRangeFloat("DampingFactor", c.DampingFactor, 0, 1).
		Positive("MaxIterations", c.MaxIterations).
		NonNegativeFloat("Tolerance", c.Tolerance).
		NonNegativeFloat("Weights.Shortest", c.Weights.Shortest).
		NonNegativeFloat("Weights.Rank", c.Weights.Rank).
		NonNegativeFloat("Weights.Motif", c.Weights.Motif).
		MinDuration("CacheTTL", c.CacheTTL, time.Millisecond).
		Positive("CacheMaxEntries", c.CacheMaxEntries).
		NonNegative("DefaultMaxHops", c.DefaultMaxHops).
		NonNegative("DefaultK", c.DefaultK).
		Positive("TopN", c.TopN).
		NonNegative("MaxCandidates", c.MaxCandidates).
		NonNegative("MaxSimplePaths", c.MaxSimplePaths).
		Validate()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return nil
}

// PageRankOptions derives the rank finder options
func (c Config) PageRankOptions() algorithms.PageRankOptions {
	return algorithms.PageRankOptions{
		DampingFactor: c.DampingFactor,
		MaxIterations: c.MaxIterations,
		Tolerance:     c.Tolerance,
		TopN:          c.TopN,
		MaxPaths:      c.MaxSimplePaths,
	}
}

// LoadConfig reads a YAML file over the defaults. Fields absent from the
// file keep their default values. Durations use Go syntax, e.g. "300s".
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := ParseConfig(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML into cfg and validates the result
func ParseConfig(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return cfg.Validate()
}
