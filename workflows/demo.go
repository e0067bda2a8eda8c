package workflows

import (
	"context"

	"github.com/smallnest/langlab/graph"
)

// DemoStart is the initial message of the demo workflow.
const DemoStart = "Starting the workflow."

// GraphState is the state of the demo workflow.
type GraphState struct {
	Messages []string `json:"messages"`
}

func appendMessage(msgs []string, m string) []string {
	out := make([]string, len(msgs), len(msgs)+1)
	copy(out, msgs)
	return append(out, m)
}

// NewDemo builds first_node -> second_node -> END.
func NewDemo() *graph.StateGraph[GraphState] {
	g := graph.NewStateGraph[GraphState]()
	g.AddNode("first_node", "Adds a message from node 1", func(_ context.Context, s GraphState) (GraphState, error) {
		return GraphState{Messages: appendMessage(s.Messages, "I reached Node 1.")}, nil
	})
	g.AddNode("second_node", "Adds a message from node 2", func(_ context.Context, s GraphState) (GraphState, error) {
		return GraphState{Messages: appendMessage(s.Messages, "And now at Node 2.")}, nil
	})
	g.SetEntryPoint("first_node")
	g.AddEdge("first_node", "second_node")
	g.AddEdge("second_node", graph.END)
	return g
}

// RunDemo runs the demo workflow from an initial message.
func RunDemo(ctx context.Context, initial string, opts ...graph.CompileOption) (GraphState, error) {
	app, err := NewDemo().Compile(append([]graph.CompileOption{graph.WithName("langgraph_demo")}, opts...)...)
	if err != nil {
		return GraphState{}, err
	}
	return app.Invoke(ctx, GraphState{Messages: []string{initial}})
}
