package scoring

import (
	"context"

	"github.com/dd0wney/cluso-attackpath/pkg/algorithms"
)

// Oracle is an external path scorer, such as a learned model, queried once
// per entry point when the external algorithm is requested.
type Oracle interface {
	ScorePaths(ctx context.Context, source, target string, maxHops int) ([]algorithms.AttackPath, error)
}

// OracleFunc adapts a function to the Oracle interface
type OracleFunc func(ctx context.Context, source, target string, maxHops int) ([]algorithms.AttackPath, error)

// ScorePaths calls f
func (f OracleFunc) ScorePaths(ctx context.Context, source, target string, maxHops int) ([]algorithms.AttackPath, error) {
	return f(ctx, source, target, maxHops)
}
