package graph

import (
	"context"
	"errors"
)

const (
	// END is the virtual node that terminates a run.
	END = "END"
	// START is the virtual node that precedes the entry point. AddEdge(START, x)
	// is the same as SetEntryPoint(x).
	START = "START"
)

// DefaultRecursionLimit bounds the number of node executions per Invoke.
const DefaultRecursionLimit = 25

var (
	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoOutgoingEdge is returned when no outgoing edge is found for a node.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrRecursionLimit is returned when a run executes more nodes than allowed.
	ErrRecursionLimit = errors.New("recursion limit reached")

	// ErrInvalidRoute is returned when a router picks a target that does not exist.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrInvalidGraph is returned by Compile for structural problems.
	ErrInvalidGraph = errors.New("invalid graph")
)

// Node is a named step of a graph operating on state S.
type Node[S any] struct {
	Name        string
	Description string
	Function    func(ctx context.Context, state S) (S, error)
}

// Edge represents an edge in the graph.
type Edge struct {
	From string
	To   string
}

// Router picks the next node, or a path map key, from the current state.
type Router[S any] func(ctx context.Context, state S) string

// conditionalEdge is a router plus an optional mapping from its return
// values to node names.
type conditionalEdge[S any] struct {
	router  Router[S]
	pathMap map[string]string
}

func (c conditionalEdge[S]) resolve(key string) (string, bool) {
	if c.pathMap == nil {
		return key, true
	}
	target, ok := c.pathMap[key]
	return target, ok
}
