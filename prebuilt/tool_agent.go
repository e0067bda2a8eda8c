package prebuilt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"

	"github.com/smallnest/langlab/graph"
	"github.com/smallnest/langlab/log"
	"github.com/smallnest/langlab/metrics"
	"github.com/smallnest/langlab/tool"
)

// DefaultMaxIterations bounds the tool rounds of a ToolAgent.
const DefaultMaxIterations = 10

// ErrNoModel is returned when an agent is created without a model.
var ErrNoModel = errors.New("agent requires a model")

// ToolCallRecord describes one executed tool call.
type ToolCallRecord struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Arguments string        `json:"arguments"`
	Result    string        `json:"result"`
	Failed    bool          `json:"failed"`
	Latency   time.Duration `json:"latency"`
}

// Observer is told about every tool call as it completes.
type Observer interface {
	OnToolCall(ctx context.Context, iteration int, call ToolCallRecord)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, iteration int, call ToolCallRecord)

// OnToolCall calls f.
func (f ObserverFunc) OnToolCall(ctx context.Context, iteration int, call ToolCallRecord) {
	f(ctx, iteration, call)
}

// AgentState is the graph state of a ToolAgent.
type AgentState struct {
	Messages   []llms.MessageContent `json:"messages"`
	Iterations int                   `json:"iterations"`
	Calls      []ToolCallRecord      `json:"calls"`
}

// Result is the outcome of ToolAgent.Run.
type Result struct {
	Answer     string
	Messages   []llms.MessageContent
	Calls      []ToolCallRecord
	Iterations int
}

type agentConfig struct {
	systemPrompt  string
	maxIterations int
	observers     []Observer
	recorder      *metrics.Recorder
	callOptions   []llms.CallOption
	listeners     []graph.NodeListener
	retry         *graph.RetryPolicy
	tracer        *graph.Tracer
}

// AgentOption configures CreateToolAgent.
type AgentOption func(*agentConfig)

// WithSystemPrompt prepends a system message to every run.
func WithSystemPrompt(prompt string) AgentOption {
	return func(c *agentConfig) { c.systemPrompt = prompt }
}

// WithMaxIterations sets how many rounds of tool calls are executed before the
// latest model reply is taken as the answer.
func WithMaxIterations(n int) AgentOption {
	return func(c *agentConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithObserver registers an observer for tool calls.
func WithObserver(o Observer) AgentOption {
	return func(c *agentConfig) { c.observers = append(c.observers, o) }
}

// WithRecorder records tool call counts and latency.
func WithRecorder(r *metrics.Recorder) AgentOption {
	return func(c *agentConfig) { c.recorder = r }
}

// WithCallOptions passes options to every model call.
func WithCallOptions(opts ...llms.CallOption) AgentOption {
	return func(c *agentConfig) { c.callOptions = append(c.callOptions, opts...) }
}

// WithNodeListeners attaches graph listeners to the agent graph.
func WithNodeListeners(listeners ...graph.NodeListener) AgentOption {
	return func(c *agentConfig) { c.listeners = append(c.listeners, listeners...) }
}

// WithRetryPolicy retries failed model calls.
func WithRetryPolicy(p *graph.RetryPolicy) AgentOption {
	return func(c *agentConfig) { c.retry = p }
}

// WithTracer traces the agent graph; give the model the same tracer to nest
// its calls under the agent node.
func WithTracer(t *graph.Tracer) AgentOption {
	return func(c *agentConfig) { c.tracer = t }
}

// ToolAgent lets a chat model call tools until it produces an answer.
type ToolAgent struct {
	cfg      agentConfig
	graph    *graph.StateGraph[AgentState]
	runnable *graph.Runnable[AgentState]
}

// CreateToolAgent builds an agent/tools loop over model and tools.
func CreateToolAgent(model llms.Model, inputTools []tools.Tool, opts ...AgentOption) (*ToolAgent, error) {
	if model == nil {
		return nil, ErrNoModel
	}
	cfg := agentConfig{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(&cfg)
	}

	executor := NewToolExecutor(inputTools)
	callOpts := append([]llms.CallOption{llms.WithTools(ToolDefinitions(inputTools))}, cfg.callOptions...)

	workflow := graph.NewStateGraph[AgentState]()

	workflow.AddNode("agent", "Tool calling model", func(ctx context.Context, state AgentState) (AgentState, error) {
		resp, err := model.GenerateContent(ctx, state.Messages, callOpts...)
		if err != nil {
			return state, err
		}
		if len(resp.Choices) == 0 {
			return state, errors.New("model returned no choices")
		}
		choice := resp.Choices[0]

		aiMsg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if choice.Content != "" {
			aiMsg.Parts = append(aiMsg.Parts, llms.TextPart(choice.Content))
		}
		for _, tc := range choice.ToolCalls {
			aiMsg.Parts = append(aiMsg.Parts, tc)
		}
		state.Messages = appendMessages(state.Messages, aiMsg)
		return state, nil
	})

	workflow.AddNode("tools", "Tool execution", func(ctx context.Context, state AgentState) (AgentState, error) {
		state.Iterations++
		calls := ToolCalls(state.Messages[len(state.Messages)-1])
		replies := make([]llms.MessageContent, 0, len(calls))
		for _, tc := range calls {
			rec := executor.Run(ctx, tc)
			cfg.recorder.RecordToolCall(rec.Name, rec.Latency, failure(rec))
			for _, o := range cfg.observers {
				o.OnToolCall(ctx, state.Iterations, rec)
			}
			state.Calls = append(state.Calls, rec)
			replies = append(replies, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: tc.ID,
					Name:       rec.Name,
					Content:    rec.Result,
				}},
			})
		}
		state.Messages = appendMessages(state.Messages, replies...)
		return state, nil
	})

	workflow.SetEntryPoint("agent")
	workflow.AddConditionalEdges("agent", func(_ context.Context, state AgentState) string {
		last := state.Messages[len(state.Messages)-1]
		if len(ToolCalls(last)) > 0 && state.Iterations < cfg.maxIterations {
			return "tools"
		}
		return "end"
	}, map[string]string{"tools": "tools", "end": graph.END})
	workflow.AddEdge("tools", "agent")

	compileOpts := []graph.CompileOption{
		graph.WithName("tool_agent"),
		graph.WithRecursionLimit(2*cfg.maxIterations + 2),
		graph.WithListeners(cfg.listeners...),
		graph.WithTracer(cfg.tracer),
	}
	if cfg.retry != nil {
		compileOpts = append(compileOpts, graph.WithRetryPolicy(cfg.retry))
	}
	runnable, err := workflow.Compile(compileOpts...)
	if err != nil {
		return nil, err
	}
	return &ToolAgent{cfg: cfg, graph: workflow, runnable: runnable}, nil
}

// Graph returns the agent graph, e.g. for drawing.
func (a *ToolAgent) Graph() *graph.StateGraph[AgentState] { return a.graph }

// Invoke runs the agent on an arbitrary initial state.
func (a *ToolAgent) Invoke(ctx context.Context, state AgentState) (AgentState, error) {
	return a.runnable.Invoke(ctx, state)
}

// Run answers query, starting from the system prompt when one is set.
func (a *ToolAgent) Run(ctx context.Context, query string) (*Result, error) {
	var msgs []llms.MessageContent
	if a.cfg.systemPrompt != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, a.cfg.systemPrompt))
	}
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, query))

	final, err := a.Invoke(ctx, AgentState{Messages: msgs})
	if err != nil {
		return nil, err
	}
	log.Debug("tool agent finished after %d iterations and %d tool calls", final.Iterations, len(final.Calls))
	return &Result{
		Answer:     FinalAnswer(final.Messages),
		Messages:   final.Messages,
		Calls:      final.Calls,
		Iterations: final.Iterations,
	}, nil
}

// ToolDefinitions describes tools for a tool calling model. Tools without a
// schema take a single "input" string.
func ToolDefinitions(ts []tools.Tool) []llms.Tool {
	defs := make([]llms.Tool, 0, len(ts))
	for _, t := range ts {
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  parameters(t),
			},
		})
	}
	return defs
}

func parameters(t tools.Tool) map[string]any {
	if st, ok := t.(tool.SchemaTool); ok {
		return st.Schema()
	}
	return tool.ObjectSchema(tool.StringParam("input", fmt.Sprintf("Input for the %s tool", t.Name())))
}

// ToolCalls returns the tool calls of an AI message.
func ToolCalls(msg llms.MessageContent) []llms.ToolCall {
	var calls []llms.ToolCall
	for _, part := range msg.Parts {
		if tc, ok := part.(llms.ToolCall); ok {
			calls = append(calls, tc)
		}
	}
	return calls
}

// FinalAnswer returns the text of the last AI message.
func FinalAnswer(msgs []llms.MessageContent) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == llms.ChatMessageTypeAI {
			return messageText(msgs[i])
		}
	}
	return ""
}

func messageText(msg llms.MessageContent) string {
	var sb strings.Builder
	for _, part := range msg.Parts {
		if tc, ok := part.(llms.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

func appendMessages(msgs []llms.MessageContent, more ...llms.MessageContent) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(msgs)+len(more))
	out = append(out, msgs...)
	return append(out, more...)
}

func failure(rec ToolCallRecord) error {
	if rec.Failed {
		return errors.New(rec.Result)
	}
	return nil
}

// ToolExecutor runs tool calls by name.
type ToolExecutor struct {
	tools map[string]tools.Tool
}

// NewToolExecutor indexes tools by name.
func NewToolExecutor(ts []tools.Tool) *ToolExecutor {
	return &ToolExecutor{tools: tool.ByName(ts)}
}

// Execute calls the named tool with raw arguments.
func (e *ToolExecutor) Execute(ctx context.Context, name, arguments string) (string, error) {
	t, ok := e.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return t.Call(ctx, toolInput(t, arguments))
}

// Run executes tc and reports the outcome as the model should see it.
func (e *ToolExecutor) Run(ctx context.Context, tc llms.ToolCall) ToolCallRecord {
	rec := ToolCallRecord{ID: tc.ID}
	if tc.FunctionCall != nil {
		rec.Name = tc.FunctionCall.Name
		rec.Arguments = tc.FunctionCall.Arguments
	}
	log.Debug("tool call %s(%s)", rec.Name, rec.Arguments)

	start := time.Now()
	out, err := e.Execute(ctx, rec.Name, rec.Arguments)
	rec.Latency = time.Since(start)
	switch {
	case errors.Is(err, ErrToolNotFound):
		rec.Result = fmt.Sprintf("Error: Tool '%s' not found", rec.Name)
		rec.Failed = true
	case err != nil:
		rec.Result = fmt.Sprintf("Error executing tool: %v", err)
		rec.Failed = true
	default:
		rec.Result = out
	}
	if rec.Failed {
		log.Warn("tool %s: %s", rec.Name, rec.Result)
	}
	return rec
}

// ErrToolNotFound is returned for calls naming an unknown tool.
var ErrToolNotFound = errors.New("tool not found")

// toolInput unwraps {"input": "..."} for tools without a schema.
func toolInput(t tools.Tool, arguments string) string {
	if _, ok := t.(tool.SchemaTool); ok {
		return arguments
	}
	if in := gjson.Get(arguments, "input"); in.Exists() && gjson.Valid(arguments) {
		return in.String()
	}
	return arguments
}
