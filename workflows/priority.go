package workflows

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/smallnest/langlab/graph"
)

// Node names of the priority workflow.
const (
	NodeStart          = "start"
	NodeAnalyze        = "analyze"
	NodeHighPriority   = "high_priority"
	NodeMediumPriority = "medium_priority"
	NodeLowPriority    = "low_priority"
	NodeValidation     = "validation"
	NodeEscalation     = "escalation"
	NodeFinal          = "final"
)

// Score thresholds.
const (
	HighThreshold       = 20
	MediumThreshold     = 10
	EscalationThreshold = 25
)

// PriorityState is the state of the priority workflow.
type PriorityState struct {
	Messages  []string `json:"messages"`
	UserInput string   `json:"user_input"`
	Score     int      `json:"score"`
	PathTaken string   `json:"path_taken"`
}

// toLower applies full Unicode case mapping, so "İ" becomes two runes.
func toLower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Score rates an input: the length in characters of its lower-cased form,
// plus 10 when it mentions urgent or important, plus 5 when it asks for help.
func Score(input string) int {
	text := toLower(input)
	score := utf8.RuneCountInString(text)
	if strings.Contains(text, "urgent") || strings.Contains(text, "important") {
		score += 10
	}
	if strings.Contains(text, "help") {
		score += 5
	}
	return score
}

// RouteByPriority picks the handler for the analyzed score.
func RouteByPriority(_ context.Context, s PriorityState) string {
	switch {
	case s.Score >= HighThreshold:
		return NodeHighPriority
	case s.Score >= MediumThreshold:
		return NodeMediumPriority
	default:
		return NodeLowPriority
	}
}

// RouteAfterHighPriority escalates very high scores.
func RouteAfterHighPriority(_ context.Context, s PriorityState) string {
	if s.Score >= EscalationThreshold {
		return NodeEscalation
	}
	return NodeValidation
}

// RouteToEnd skips final processing for escalated requests.
func RouteToEnd(_ context.Context, s PriorityState) string {
	if strings.Contains(s.PathTaken, NodeEscalation) {
		return "end"
	}
	return NodeFinal
}

func handler(name, message string) func(context.Context, PriorityState) (PriorityState, error) {
	return func(_ context.Context, s PriorityState) (PriorityState, error) {
		s.Messages = appendMessage(s.Messages, message)
		s.PathTaken += " -> " + name
		return s, nil
	}
}

func startNode(_ context.Context, s PriorityState) (PriorityState, error) {
	s.Messages = appendMessage(s.Messages, "Starting workflow...")
	s.PathTaken = NodeStart
	return s, nil
}

func analyzeNode(_ context.Context, s PriorityState) (PriorityState, error) {
	s.Score = Score(s.UserInput)
	s.Messages = appendMessage(s.Messages, fmt.Sprintf("Analyzed input: '%s' (Score: %d)", toLower(s.UserInput), s.Score))
	return s, nil
}

// NewPriority builds the priority triage graph.
func NewPriority() *graph.StateGraph[PriorityState] {
	g := graph.NewStateGraph[PriorityState]()
	g.AddNode(NodeStart, "Starting node that initializes the workflow", startNode)
	g.AddNode(NodeAnalyze, "Analyzes the user input and assigns a score", analyzeNode)
	g.AddNode(NodeHighPriority, "Handles high priority requests",
		handler(NodeHighPriority, "HIGH PRIORITY: Processing immediately!"))
	g.AddNode(NodeMediumPriority, "Handles medium priority requests",
		handler(NodeMediumPriority, "MEDIUM PRIORITY: Processing in normal queue."))
	g.AddNode(NodeLowPriority, "Handles low priority requests",
		handler(NodeLowPriority, "LOW PRIORITY: Will process when resources available."))
	g.AddNode(NodeValidation, "Validates the processing",
		handler(NodeValidation, "Validation complete."))
	g.AddNode(NodeEscalation, "Escalates high priority items",
		handler(NodeEscalation, "Escalating to senior team..."))
	g.AddNode(NodeFinal, "Final processing before completion",
		handler(NodeFinal, "Final processing complete."))

	g.SetEntryPoint(NodeStart)
	g.AddEdge(NodeStart, NodeAnalyze)
	g.AddConditionalEdges(NodeAnalyze, RouteByPriority, map[string]string{
		NodeHighPriority:   NodeHighPriority,
		NodeMediumPriority: NodeMediumPriority,
		NodeLowPriority:    NodeLowPriority,
	})
	g.AddConditionalEdges(NodeHighPriority, RouteAfterHighPriority, map[string]string{
		NodeEscalation: NodeEscalation,
		NodeValidation: NodeValidation,
	})
	g.AddEdge(NodeMediumPriority, NodeValidation)
	g.AddEdge(NodeLowPriority, NodeValidation)
	g.AddEdge(NodeEscalation, NodeValidation)
	g.AddConditionalEdges(NodeValidation, RouteToEnd, map[string]string{
		NodeFinal: NodeFinal,
		"end":     graph.END,
	})
	g.AddEdge(NodeFinal, graph.END)
	return g
}

// RunPriority runs the priority workflow for one input.
func RunPriority(ctx context.Context, input string, opts ...graph.CompileOption) (PriorityState, error) {
	app, err := NewPriority().Compile(append([]graph.CompileOption{graph.WithName("priority_workflow")}, opts...)...)
	if err != nil {
		return PriorityState{}, err
	}
	return app.Invoke(ctx, PriorityState{Messages: []string{}, UserInput: input})
}

// PriorityInputs exercise the low, medium, high and escalation paths.
var PriorityInputs = []string{
	"hello",
	"I need some help with this",
	"This is urgent help needed",
	"URGENT AND IMPORTANT: Critical issue needs immediate help!",
}
