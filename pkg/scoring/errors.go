package scoring

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for malformed queries and configuration
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedAlgorithm is returned for an algorithm the engine cannot
	// run, such as external scoring without an oracle. It is always reported
	// together with ErrInvalidArgument.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrOracleFailure marks a per-entry-point oracle error or panic
	ErrOracleFailure = errors.New("oracle failure")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func unsupportedAlgorithm(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrInvalidArgument, ErrUnsupportedAlgorithm, fmt.Sprintf(format, args...))
}
