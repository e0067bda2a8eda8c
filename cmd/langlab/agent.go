package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/tools"

	"github.com/smallnest/langlab/graph"
	"github.com/smallnest/langlab/prebuilt"
	"github.com/smallnest/langlab/tool"
)

func (a *app) agentCmd() *cobra.Command {
	var (
		financial bool
		verbose   bool
		maxIter   int
		retries   int
		location  string
	)
	cmd := &cobra.Command{
		Use:   "agent [query]",
		Short: "Answer questions with the tool calling agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			model, err := a.model(ctx)
			if err != nil {
				return err
			}

			cfg := tool.SetConfig{Fallback: model}
			var ts []tools.Tool
			var system string
			queries := prebuilt.BasicQueries
			if financial {
				ts, system, queries = tool.FinancialTools(cfg), prebuilt.FinancialSystemPrompt, prebuilt.FinancialQueries
			} else {
				ts, system = tool.BasicAgentTools(cfg), prebuilt.BasicSystemPrompt(time.Now(), location)
			}
			if len(args) > 0 {
				queries = []string{strings.Join(args, " ")}
			}

			opts := []prebuilt.AgentOption{
				prebuilt.WithSystemPrompt(system),
				prebuilt.WithMaxIterations(maxIter),
				prebuilt.WithRecorder(a.recorder),
				prebuilt.WithTracer(a.tracer),
			}
			if retries > 0 {
				opts = append(opts, prebuilt.WithRetryPolicy(&graph.RetryPolicy{
					MaxRetries:      retries,
					BackoffStrategy: graph.ExponentialBackoff,
					Retryable: func(err error) bool {
						return !errors.Is(err, context.Canceled)
					},
				}))
			}
			if verbose {
				opts = append(opts, prebuilt.WithObserver(prebuilt.ObserverFunc(a.printToolCall)))
			}
			agent, err := prebuilt.CreateToolAgent(model, ts, opts...)
			if err != nil {
				return err
			}
			for _, q := range queries {
				a.runQuery(ctx, agent, q)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&financial, "financial", false, "use the stock analysis agent")
	f.BoolVarP(&verbose, "verbose", "v", false, "print every tool call")
	f.IntVar(&maxIter, "max-iterations", prebuilt.DefaultMaxIterations, "maximum rounds of tool calls")
	f.IntVar(&retries, "retries", 0, "retry failed model calls with exponential backoff")
	f.StringVar(&location, "location", prebuilt.DefaultLocation, "host location reported to the model")
	return cmd
}

// runQuery prints the answer of one query; errors are reported and the next
// query still runs.
func (a *app) runQuery(ctx context.Context, agent *prebuilt.ToolAgent, query string) {
	a.printf("\n%s\nQuery: %s\n%s\n", equals(80), query, equals(80))
	res, err := agent.Run(ctx, query)
	if err != nil {
		a.printf("\nError: %v\n", err)
		return
	}
	a.printf("\n%s\nFINAL ANSWER: %s\n%s\n", strings.Repeat("*", 80), res.Answer, strings.Repeat("*", 80))
	if len(res.Calls) > 0 {
		names := make([]string, 0, len(res.Calls))
		for _, c := range res.Calls {
			names = append(names, c.Name)
		}
		a.printf("Tools used: %s\n", strings.Join(names, ", "))
	}
}

func (a *app) printToolCall(_ context.Context, iteration int, call prebuilt.ToolCallRecord) {
	a.printf("\n[iteration %d] Tool: %s\n  Args: %s\n  Result: %s\n", iteration, call.Name, call.Arguments, call.Result)
}
