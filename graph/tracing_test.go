package graph_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/langlab/graph"
)

func events(spans []*graph.TraceSpan) []graph.TraceEvent {
	out := make([]graph.TraceEvent, len(spans))
	for i, s := range spans {
		out[i] = s.Event
	}
	return out
}

func TestTracer_GraphRun(t *testing.T) {
	g := graph.NewStateGraph[counter]()
	g.AddNode("a", "", step("a"))
	g.AddNode("b", "", step("b"))
	g.AddEdge(graph.START, "a")
	g.AddEdge("a", "b")
	g.AddEdge("b", graph.END)

	tracer := graph.NewTracer()
	app, err := g.Compile(graph.WithName("pair"), graph.WithTracer(tracer))
	require.NoError(t, err)

	_, err = app.Invoke(context.Background(), counter{})
	require.NoError(t, err)

	spans := tracer.Spans()
	require.Len(t, spans, 5)
	assert.Equal(t, []graph.TraceEvent{
		graph.TraceEventGraphEnd,
		graph.TraceEventNodeEnd,
		graph.TraceEventEdgeTraversal,
		graph.TraceEventNodeEnd,
		graph.TraceEventEdgeTraversal,
	}, events(spans))

	root := spans[0]
	assert.Equal(t, "pair", root.NodeName)
	assert.Empty(t, root.ParentID)
	assert.True(t, root.Ended())
	assert.Equal(t, 2, root.State.(counter).N)

	children := tracer.Children(root.ID)
	assert.Len(t, children, 4)
	assert.Equal(t, "a", spans[2].FromNode)
	assert.Equal(t, "b", spans[2].ToNode)
	assert.Equal(t, graph.END, spans[4].ToNode)
}

func TestTracer_NodeSpanInContext(t *testing.T) {
	tracer := graph.NewTracer()
	var seen *graph.TraceSpan

	g := graph.NewStateGraph[counter]()
	g.AddNode("call", "", func(ctx context.Context, s counter) (counter, error) {
		seen = graph.SpanFromContext(ctx)
		inner := tracer.StartSpan(ctx, graph.TraceEventLLMStart, "tiny")
		tracer.EndSpan(ctx, inner, nil, nil)
		return s, nil
	})
	g.AddEdge(graph.START, "call")
	g.AddEdge("call", graph.END)

	app, err := g.Compile(graph.WithTracer(tracer))
	require.NoError(t, err)
	_, err = app.Invoke(context.Background(), counter{})
	require.NoError(t, err)

	require.NotNil(t, seen)
	assert.Equal(t, "call", seen.NodeName)
	llm := tracer.Children(seen.ID)
	require.Len(t, llm, 1)
	assert.Equal(t, graph.TraceEventLLMEnd, llm[0].Event)
}

func TestTracer_NodeError(t *testing.T) {
	boom := errors.New("boom")
	g := graph.NewStateGraph[counter]()
	g.AddNode("fail", "", func(context.Context, counter) (counter, error) { return counter{}, boom })
	g.AddEdge(graph.START, "fail")
	g.AddEdge("fail", graph.END)

	tracer := graph.NewTracer()
	app, err := g.Compile(graph.WithTracer(tracer))
	require.NoError(t, err)

	_, err = app.Invoke(context.Background(), counter{})
	require.ErrorIs(t, err, boom)

	spans := tracer.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, graph.TraceEventNodeError, spans[1].Event)
	assert.ErrorIs(t, spans[1].Error, boom)
	assert.ErrorIs(t, spans[0].Error, boom)
}

func TestTracer_Hooks(t *testing.T) {
	var started, ended int
	var buf bytes.Buffer
	tracer := graph.NewTracer(graph.JSONTraceHook(&buf), graph.LogTraceHook())
	tracer.AddHook(graph.TraceHookFunc(func(_ context.Context, s *graph.TraceSpan) {
		if s.Ended() {
			ended++
		} else {
			started++
		}
	}))

	ctx := context.Background()
	span := tracer.StartSpan(ctx, graph.TraceEventLLMStart, "tiny")
	span.Metadata["provider"] = "fake"
	tracer.EndSpan(ctx, span, nil, errors.New("refused"))
	tracer.TraceEdgeTraversal(ctx, "x", "y")

	assert.Equal(t, 1, started)
	assert.Equal(t, 2, ended)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "llm_error", rec["event"])
	assert.Equal(t, "refused", rec["error"])
	assert.Equal(t, "fake", rec["metadata"].(map[string]any)["provider"])

	tracer.Clear()
	assert.Empty(t, tracer.Spans())
}

func TestTracer_Nil(t *testing.T) {
	var tracer *graph.Tracer
	ctx := context.Background()
	span := tracer.StartSpan(ctx, graph.TraceEventGraphStart, "g")
	assert.Nil(t, span)
	tracer.EndSpan(ctx, span, nil, nil)
	tracer.TraceEdgeTraversal(ctx, "a", "b")
	assert.Nil(t, tracer.Spans())
	assert.Equal(t, ctx, graph.ContextWithSpan(ctx, nil))
}
