package prebuilt

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"

	"github.com/smallnest/langlab/graph"
	"github.com/smallnest/langlab/tool"
)

// NoFinalAnswer is returned by RunSimpleQuery when every assistant message
// asked for a tool.
const NoFinalAnswer = "No final answer provided"

// Message roles of a PromptAgent conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ParsedToolCall is a tool call extracted from model text.
type ParsedToolCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// Message is one entry of a PromptAgent conversation.
type Message struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []ParsedToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

// State keys of a PromptAgent.
const (
	KeyMessages = "messages"
	KeyLLMCalls = "llm_calls"
)

var toolCallPattern = regexp.MustCompile(`\{[^}]*"tool"[^}]*\}`)

// ParseToolCalls extracts {"tool": name, "args": {...}} objects from text.
// Every match of the tool pattern is widened to the balanced JSON object
// starting at the same brace, so nested args decode. Objects lacking "tool"
// or "args" are ignored.
func ParseToolCalls(text string) []ParsedToolCall {
	var calls []ParsedToolCall
	consumed := 0
	for _, loc := range toolCallPattern.FindAllStringIndex(text, -1) {
		if loc[0] < consumed {
			continue
		}
		obj := balancedObject(text[loc[0]:])
		if obj == "" || !gjson.Valid(obj) {
			continue
		}
		consumed = loc[0] + len(obj)

		name, args := gjson.Get(obj, "tool"), gjson.Get(obj, "args")
		if !name.Exists() || !args.Exists() {
			continue
		}
		calls = append(calls, ParsedToolCall{
			ID:   fmt.Sprintf("call_%d", len(calls)),
			Name: name.String(),
			Args: json.RawMessage(args.Raw),
		})
	}
	return calls
}

// balancedObject returns the JSON object at the start of s, or "" when the
// braces never balance.
func balancedObject(s string) string {
	depth := 0
	inString, escaped := false, false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case inString:
		case r == '{':
			depth++
		case r == '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// FormatToolsForPrompt lists tools with their parameters for a text prompt.
func FormatToolsForPrompt(ts []tools.Tool) string {
	lines := make([]string, 0, len(ts))
	for _, t := range ts {
		params, _ := json.Marshal(parameters(t)["properties"])
		lines = append(lines, fmt.Sprintf("\n- %s: %s\n  Parameters: %s", t.Name(), t.Description(), params))
	}
	return strings.Join(lines, "\n")
}

// FormatConversation renders messages as "User:", "Assistant:" and
// "Tool Result:" lines.
func FormatConversation(msgs []Message) string {
	var sb strings.Builder
	for _, m := range msgs {
		switch m.Role {
		case RoleUser:
			fmt.Fprintf(&sb, "User: %s\n", m.Content)
		case RoleAssistant:
			fmt.Fprintf(&sb, "Assistant: %s\n", m.Content)
		case RoleTool:
			fmt.Fprintf(&sb, "Tool Result: %s\n", m.Content)
		}
	}
	return sb.String()
}

const arithmeticPrompt = `You are a helpful assistant tasked with performing arithmetic on a set of inputs.

Available tools:
%s

To use a tool, respond with a JSON object in this format:
{"tool": "tool_name", "args": {"param1": value1, "param2": value2}}

After using a tool, wait for the result before proceeding.
If no tool is needed, provide a direct answer.

Conversation:
%s
Current request: `

// ArithmeticPrompt builds the prompt sent on every llm_call step.
func ArithmeticPrompt(ts []tools.Tool, msgs []Message) string {
	return fmt.Sprintf(arithmeticPrompt, FormatToolsForPrompt(ts), FormatConversation(msgs))
}

// PromptAgent is a tool loop for models without native tool calling: tools
// are described in the prompt and calls are parsed from the reply text.
type PromptAgent struct {
	graph    *graph.StateGraph[map[string]any]
	runnable *graph.Runnable[map[string]any]
}

// CreatePromptAgent builds the llm_call / tool_node graph.
func CreatePromptAgent(model llms.Model, inputTools []tools.Tool, opts ...graph.CompileOption) (*PromptAgent, error) {
	if model == nil {
		return nil, ErrNoModel
	}
	byName := tool.ByName(inputTools)

	workflow := graph.NewStateGraph[map[string]any]()
	workflow.SetSchema(graph.NewMapSchema().
		RegisterReducer(KeyMessages, graph.AppendReducer).
		RegisterReducer(KeyLLMCalls, graph.AddReducer))

	workflow.AddNode("llm_call", "LLM decides whether to call a tool or not", func(ctx context.Context, state map[string]any) (map[string]any, error) {
		prompt := ArithmeticPrompt(inputTools, Messages(state))
		response, err := llms.GenerateFromSinglePrompt(ctx, model, prompt)
		if err != nil {
			return nil, err
		}
		msg := Message{Role: RoleAssistant, Content: response, ToolCalls: ParseToolCalls(response)}
		return map[string]any{
			KeyMessages: []Message{msg},
			KeyLLMCalls: 1,
		}, nil
	})

	workflow.AddNode("tool_node", "Performs the tool call", func(ctx context.Context, state map[string]any) (map[string]any, error) {
		msgs := Messages(state)
		last := msgs[len(msgs)-1]
		results := make([]Message, 0, len(last.ToolCalls))
		for _, tc := range last.ToolCalls {
			var content string
			t, ok := byName[tc.Name]
			if !ok {
				content = fmt.Sprintf("Error calling tool '%s': %v", tc.Name, ErrToolNotFound)
			} else if obs, err := t.Call(ctx, string(tc.Args)); err != nil {
				content = fmt.Sprintf("Error calling tool '%s': %v", tc.Name, err)
			} else {
				content = fmt.Sprintf("Tool '%s' returned: %s", tc.Name, obs)
			}
			results = append(results, Message{Role: RoleTool, Content: content, ToolCallID: tc.ID})
		}
		return map[string]any{KeyMessages: results}, nil
	})

	workflow.AddEdge(graph.START, "llm_call")
	workflow.AddConditionalEdges("llm_call", ShouldContinue, map[string]string{
		"tool_node": "tool_node",
		graph.END:   graph.END,
	})
	workflow.AddEdge("tool_node", "llm_call")

	runnable, err := workflow.Compile(append([]graph.CompileOption{graph.WithName("prompt_agent")}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &PromptAgent{graph: workflow, runnable: runnable}, nil
}

// Sample requests for the calculator agent.
var (
	CalculatorTask    = "Add 3 and 4, then multiply the result by 2."
	CalculatorQueries = []string{"What is 10 divided by 2?", "Calculate 15 plus 25", "Multiply 7 by 8"}
)

// NewCalculatorAgent is a PromptAgent over add, multiply and divide.
func NewCalculatorAgent(model llms.Model, opts ...graph.CompileOption) (*PromptAgent, error) {
	return CreatePromptAgent(model, tool.ArithmeticTools(), opts...)
}

// ShouldContinue routes to tool_node while the model keeps asking for tools.
func ShouldContinue(_ context.Context, state map[string]any) string {
	msgs := Messages(state)
	if len(msgs) > 0 && len(msgs[len(msgs)-1].ToolCalls) > 0 {
		return "tool_node"
	}
	return graph.END
}

// Messages returns the conversation stored in state.
func Messages(state map[string]any) []Message {
	msgs, _ := state[KeyMessages].([]Message)
	return msgs
}

// LLMCalls returns how many times the model was called.
func LLMCalls(state map[string]any) int {
	n, _ := state[KeyLLMCalls].(int)
	return n
}

// Graph returns the agent graph, e.g. for drawing.
func (a *PromptAgent) Graph() *graph.StateGraph[map[string]any] { return a.graph }

// Invoke runs the agent on a conversation.
func (a *PromptAgent) Invoke(ctx context.Context, msgs []Message) (map[string]any, error) {
	return a.runnable.Invoke(ctx, map[string]any{KeyMessages: msgs, KeyLLMCalls: 0})
}

// RunSimpleQuery answers a single user query with the last assistant message
// that did not call a tool.
func (a *PromptAgent) RunSimpleQuery(ctx context.Context, query string) (string, error) {
	state, err := a.Invoke(ctx, []Message{{Role: RoleUser, Content: query}})
	if err != nil {
		return "", err
	}
	msgs := Messages(state)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleAssistant && len(msgs[i].ToolCalls) == 0 {
			return msgs[i].Content, nil
		}
	}
	return NoFinalAnswer, nil
}
