// Package graph is a small state machine executor for LLM workflows.
//
// A StateGraph[S] holds named nodes that transform a state of type S,
// static edges, and conditional edges whose router inspects the state to
// pick the next node. Compile validates the structure and returns a
// Runnable whose Invoke walks the graph from the entry point to END, one
// node at a time.
//
//	g := graph.NewStateGraph[State]()
//	g.AddNode("analyze", "Score the input", analyze)
//	g.AddNode("high", "Urgent handling", high)
//	g.AddNode("low", "Queued handling", low)
//	g.AddEdge(graph.START, "analyze")
//	g.AddConditionalEdges("analyze", routeByScore, map[string]string{
//		"high": "high",
//		"low":  "low",
//	})
//	g.AddEdge("high", graph.END)
//	g.AddEdge("low", graph.END)
//
//	app, err := g.Compile(graph.WithRecursionLimit(10))
//	final, err := app.Invoke(ctx, State{Input: "urgent: server down"})
//
// # State merging
//
// Without a schema the state returned by a node replaces the current state.
// With a StateSchema, typically a MapSchema, each node returns a partial
// update which is merged key by key through reducers such as AppendReducer
// and AddReducer.
//
// # Observability
//
// NodeListeners receive chain_start, start, complete, error and chain_end
// events synchronously. NewLoggingListener writes them to a log.Logger; the
// metrics package provides a Prometheus backed listener.
//
// # Visualization
//
// Exporter renders a graph as Mermaid, DOT or an ASCII tree. Conditional
// edges with a path map are drawn with one labelled edge per key.
// MermaidRenderer turns the Mermaid text into a PNG through mermaid.ink.
package graph
