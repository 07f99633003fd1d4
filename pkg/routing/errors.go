package routing

import (
	"errors"
	"fmt"

	"network_analysis/pkg/graph"
)

var (
	// ErrEmptyGraph is returned when a query is made against a graph with no nodes.
	ErrEmptyGraph = errors.New("graph has no nodes")
	// ErrNoRoute is returned when no route exists between the two points.
	ErrNoRoute = errors.New("no route found")
	// ErrNodeNotFound is returned when a node index is outside the graph.
	ErrNodeNotFound = errors.New("node not in graph")
	// ErrMissingAttribute is wrapped by MissingAttributeError.
	ErrMissingAttribute = errors.New("edge attribute missing")
	// ErrNegativeWeight is returned when an edge weight is below zero.
	ErrNegativeWeight = errors.New("negative edge weight")
)

// MissingAttributeError reports an edge without a value for the requested
// weight attribute. Edge is -1 when the whole column was never computed.
type MissingAttributeError struct {
	Attr graph.Attribute
	Edge int64
}

func (e *MissingAttributeError) Error() string {
	if e.Edge < 0 {
		return fmt.Sprintf("edge attribute %q not computed for this graph", e.Attr)
	}
	return fmt.Sprintf("edge %d has no %q value", e.Edge, e.Attr)
}

func (e *MissingAttributeError) Unwrap() error { return ErrMissingAttribute }
