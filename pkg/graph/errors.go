package graph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeNotFound = errors.New("node not found")
	ErrInvalidNode  = errors.New("invalid node")
	ErrInvalidEdge  = errors.New("invalid edge")
)

// GraphError provides structured error information for graph building.
type GraphError struct {
	Op     string // Operation that failed (e.g., "AddNode", "AddEdge")
	Entity string // "node" or "edge"
	ID     string // Node ID or "source->target" for edges
	Cause  error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

func nodeError(op, id string, cause error) error {
	return &GraphError{Op: op, Entity: "node", ID: id, Cause: cause}
}

func edgeError(op string, e Edge, cause error) error {
	return &GraphError{Op: op, Entity: "edge", ID: e.SourceID + "->" + e.TargetID, Cause: cause}
}
