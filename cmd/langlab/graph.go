package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smallnest/langlab/graph"
	"github.com/smallnest/langlab/prebuilt"
	"github.com/smallnest/langlab/workflows"
)

type graphOptions struct {
	mermaid bool
	ascii   bool
	png     string
}

func (a *app) graphCmd() *cobra.Command {
	var o graphOptions
	cmd := &cobra.Command{
		Use:       "graph <demo|priority|calculator> [input]",
		Short:     "Run a graph workflow",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: []string{"demo", "priority", "calculator"},
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) > 1 {
				input = args[1]
			}
			ctx := cmd.Context()
			switch args[0] {
			case "demo":
				return a.runDemo(ctx, o, input)
			case "priority":
				return a.runPriority(ctx, o, input)
			case "calculator":
				return a.runCalculator(ctx, o, input)
			default:
				return fmt.Errorf("unknown graph %q", args[0])
			}
		},
	}
	f := cmd.Flags()
	f.BoolVar(&o.mermaid, "mermaid", false, "print the Mermaid diagram of the graph")
	f.BoolVar(&o.ascii, "ascii", false, "print an ASCII tree of the graph")
	f.StringVar(&o.png, "png", "", "render the graph to this PNG file via mermaid.ink")
	return cmd
}

// draw prints or saves the graph as requested.
func draw[S any](ctx context.Context, a *app, o graphOptions, g *graph.StateGraph[S]) {
	exp := graph.NewExporter(g)
	if o.mermaid {
		a.printf("%s\n", exp.DrawMermaid())
	}
	if o.ascii {
		a.printf("%s\n", exp.DrawASCII())
	}
	if o.png == "" {
		return
	}
	if err := exp.SaveMermaidPNG(ctx, o.png); err != nil {
		a.printf("\nNote: Could not generate PNG visualization: %v\n", err)
		return
	}
	a.printf("\n%s\nGraph visualization saved to: %s\n%s\n\n", equals(80), o.png, equals(80))
}

func (a *app) compileOptions(name string) []graph.CompileOption {
	return []graph.CompileOption{
		graph.WithListeners(a.recorder.NodeListener(name)),
		graph.WithTracer(a.tracer),
	}
}

func (a *app) runDemo(ctx context.Context, o graphOptions, input string) error {
	draw(ctx, a, o, workflows.NewDemo())
	if input == "" {
		input = workflows.DemoStart
	}
	result, err := workflows.RunDemo(ctx, input, a.compileOptions("langgraph_demo")...)
	if err != nil {
		return err
	}
	a.printf("\nFinal State:\n%s\n%+v\n%s\n", equals(50), result, equals(50))
	a.printf("\nWorkflow Messages:\n%s\n", dashes(50))
	for i, msg := range result.Messages {
		a.printf("%d. %s\n", i+1, msg)
	}
	a.printf("%s\n", dashes(50))
	return nil
}

func (a *app) runPriority(ctx context.Context, o graphOptions, input string) error {
	draw(ctx, a, o, workflows.NewPriority())
	for _, in := range inputs(input, workflows.PriorityInputs...) {
		a.printf("\n%s\nProcessing: '%s'\n%s\n", equals(80), in, equals(80))
		result, err := workflows.RunPriority(ctx, in, a.compileOptions("priority_workflow")...)
		if err != nil {
			return err
		}
		a.printf("\nScore: %d\nPath Taken: %s\n", result.Score, result.PathTaken)
		a.printf("\nWorkflow Messages:\n%s\n", dashes(80))
		for i, msg := range result.Messages {
			a.printf("%d. %s\n", i+1, msg)
		}
		a.printf("%s\n", dashes(80))
	}
	return nil
}

func (a *app) runCalculator(ctx context.Context, o graphOptions, input string) error {
	model, err := a.model(ctx)
	if err != nil {
		return err
	}
	agent, err := prebuilt.NewCalculatorAgent(model, a.compileOptions("prompt_agent")...)
	if err != nil {
		return err
	}
	draw(ctx, a, o, agent.Graph())

	if input != "" {
		answer, err := agent.RunSimpleQuery(ctx, input)
		if err != nil {
			return err
		}
		a.printf("\nQuery: %s\nAnswer: %s\n", input, answer)
		return nil
	}

	state, err := agent.Invoke(ctx, []prebuilt.Message{{Role: prebuilt.RoleUser, Content: prebuilt.CalculatorTask}})
	if err != nil {
		return err
	}
	a.printf("\n=== Agent Execution ===\n")
	for i, msg := range prebuilt.Messages(state) {
		a.printf("\nMessage %d:\nRole: %s\nContent: %s\n", i+1, msg.Role, msg.Content)
		if len(msg.ToolCalls) > 0 {
			for _, tc := range msg.ToolCalls {
				a.printf("Tool Call: %s %s(%s)\n", tc.ID, tc.Name, tc.Args)
			}
		}
	}
	a.printf("\nTotal LLM calls: %d\n", prebuilt.LLMCalls(state))

	a.printf("\n\n=== Additional Tests ===\n")
	for _, q := range prebuilt.CalculatorQueries {
		answer, err := agent.RunSimpleQuery(ctx, q)
		if err != nil {
			return err
		}
		a.printf("\nQuery: %s\nAnswer: %s\n", q, answer)
	}
	return nil
}
