package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// StateGraph is a directed graph of nodes sharing a state of type S.
//
//	type Counter struct{ N int }
//
//	g := graph.NewStateGraph[Counter]()
//	g.AddNode("inc", "Increment", func(ctx context.Context, s Counter) (Counter, error) {
//		s.N++
//		return s, nil
//	})
//	g.SetEntryPoint("inc")
//	g.AddEdge("inc", graph.END)
//	app, err := g.Compile()
type StateGraph[S any] struct {
	nodes            map[string]Node[S]
	order            []string
	edges            []Edge
	conditionalEdges map[string]conditionalEdge[S]
	entryPoint       string

	// Schema merges node output into the running state. When nil, the
	// state returned by a node replaces the current one.
	Schema StateSchema[S]

	errs []error
}

// NewStateGraph creates an empty graph.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:            make(map[string]Node[S]),
		conditionalEdges: make(map[string]conditionalEdge[S]),
	}
}

// AddNode adds a node. Duplicate or reserved names are reported by Compile.
func (g *StateGraph[S]) AddNode(name, description string, fn func(ctx context.Context, state S) (S, error)) {
	switch {
	case name == "" || name == END || name == START:
		g.errs = append(g.errs, fmt.Errorf("%w: reserved node name %q", ErrInvalidGraph, name))
		return
	case fn == nil:
		g.errs = append(g.errs, fmt.Errorf("%w: node %s has no function", ErrInvalidGraph, name))
		return
	}
	if _, dup := g.nodes[name]; dup {
		g.errs = append(g.errs, fmt.Errorf("%w: duplicate node %s", ErrInvalidGraph, name))
		return
	}
	g.nodes[name] = Node[S]{Name: name, Description: description, Function: fn}
	g.order = append(g.order, name)
}

// AddEdge adds a static edge. An edge from START sets the entry point.
func (g *StateGraph[S]) AddEdge(from, to string) {
	if from == START {
		g.SetEntryPoint(to)
		return
	}
	g.edges = append(g.edges, Edge{From: from, To: to})
}

// AddConditionalEdge routes from a node to whichever node the router names.
func (g *StateGraph[S]) AddConditionalEdge(from string, router Router[S]) {
	g.AddConditionalEdges(from, router, nil)
}

// AddConditionalEdges routes from a node through a path map: the router
// returns a key and pathMap translates it into a node name or END.
func (g *StateGraph[S]) AddConditionalEdges(from string, router Router[S], pathMap map[string]string) {
	if _, dup := g.conditionalEdges[from]; dup {
		g.errs = append(g.errs, fmt.Errorf("%w: node %s has more than one conditional edge", ErrInvalidGraph, from))
		return
	}
	g.conditionalEdges[from] = conditionalEdge[S]{router: router, pathMap: pathMap}
}

// SetEntryPoint sets the first node to run.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetSchema sets the state schema for the graph.
func (g *StateGraph[S]) SetSchema(schema StateSchema[S]) {
	g.Schema = schema
}

// Nodes returns the node names in insertion order.
func (g *StateGraph[S]) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Compile validates the graph and returns a runnable.
func (g *StateGraph[S]) Compile(opts ...CompileOption) (*Runnable[S], error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	cfg := compileConfig{recursionLimit: DefaultRecursionLimit, name: "graph"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.recursionLimit <= 0 {
		cfg.recursionLimit = DefaultRecursionLimit
	}

	return &Runnable[S]{graph: g, cfg: cfg}, nil
}

func (g *StateGraph[S]) validate() error {
	if len(g.errs) > 0 {
		return errors.Join(g.errs...)
	}
	if g.entryPoint == "" {
		return ErrEntryPointNotSet
	}
	if !g.hasNode(g.entryPoint) {
		return fmt.Errorf("%w: entry point %s", ErrNodeNotFound, g.entryPoint)
	}

	static := make(map[string]int)
	for _, e := range g.edges {
		if !g.hasNode(e.From) {
			return fmt.Errorf("%w: edge source %s", ErrNodeNotFound, e.From)
		}
		if e.To != END && !g.hasNode(e.To) {
			return fmt.Errorf("%w: edge target %s", ErrNodeNotFound, e.To)
		}
		static[e.From]++
		if static[e.From] > 1 {
			return fmt.Errorf("%w: node %s has more than one outgoing edge", ErrInvalidGraph, e.From)
		}
	}

	for _, from := range sortedKeys(g.conditionalEdges) {
		ce := g.conditionalEdges[from]
		if !g.hasNode(from) {
			return fmt.Errorf("%w: conditional edge source %s", ErrNodeNotFound, from)
		}
		if ce.router == nil {
			return fmt.Errorf("%w: conditional edge from %s has no router", ErrInvalidGraph, from)
		}
		if static[from] > 0 {
			return fmt.Errorf("%w: node %s has both a static and a conditional edge", ErrInvalidGraph, from)
		}
		for _, key := range sortedKeys(ce.pathMap) {
			target := ce.pathMap[key]
			if target != END && !g.hasNode(target) {
				return fmt.Errorf("%w: path %q from %s targets %s", ErrNodeNotFound, key, from, target)
			}
		}
	}
	return nil
}

func (g *StateGraph[S]) hasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type compileConfig struct {
	recursionLimit int
	listeners      []NodeListener
	name           string
	retry          *RetryPolicy
	tracer         *Tracer
}

// CompileOption configures a compiled graph.
type CompileOption func(*compileConfig)

// WithRecursionLimit caps the number of node executions in one run.
func WithRecursionLimit(limit int) CompileOption {
	return func(c *compileConfig) { c.recursionLimit = limit }
}

// WithListeners registers listeners notified of every node event.
func WithListeners(listeners ...NodeListener) CompileOption {
	return func(c *compileConfig) { c.listeners = append(c.listeners, listeners...) }
}

// WithName names the graph in chain events and metrics.
func WithName(name string) CompileOption {
	return func(c *compileConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithRetryPolicy retries failing nodes according to policy.
func WithRetryPolicy(policy *RetryPolicy) CompileOption {
	return func(c *compileConfig) { c.retry = policy }
}

// WithTracer records a graph span per run, a node span per executed node
// and an edge span per transition. Node contexts carry their span, so model
// calls made inside a node nest under it.
func WithTracer(t *Tracer) CompileOption {
	return func(c *compileConfig) { c.tracer = t }
}
