package main

import (
	"github.com/spf13/cobra"

	"github.com/smallnest/langlab/eval"
)

func (a *app) evalCmd() *cobra.Command {
	var (
		datasetPath string
		constant    string
		contains    bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run an evaluation experiment over a dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ds := eval.CapitalsDataset()
			if datasetPath != "" {
				loaded, err := eval.LoadDataset(datasetPath)
				if err != nil {
					return err
				}
				ds = *loaded
			}

			exp := &eval.Experiment{
				Name:        ds.Name + "_experiment",
				Description: ds.Description,
				Dataset:     ds,
				Evaluators:  map[string]eval.Evaluator{"exact_match": eval.ExactMatch},
				Concurrency: concurrency,
			}
			if contains {
				exp.Evaluators["contains"] = eval.ContainsMatch
			}
			if constant != "" {
				exp.Task = eval.Constant(constant)
				exp.Config = map[string]any{"model_name": "hardcoded"}
			} else {
				model, err := a.model(ctx)
				if err != nil {
					return err
				}
				exp.Task = eval.ModelTask(model)
			}

			report, err := exp.Run(ctx)
			if err != nil {
				return err
			}
			for i, res := range report.Results {
				status := "FAIL"
				if res.Passed {
					status = "PASS"
				}
				a.printf("%d. [%s] %s\n   expected: %s\n   output:   %s\n", i+1, status, res.Input, res.Expected, res.Output)
				if res.Error != "" {
					a.printf("   error:    %s\n", res.Error)
				}
			}
			a.printf("\n%s\n", report.Summary())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&datasetPath, "dataset", "", "YAML dataset file (defaults to the capitals dataset)")
	f.StringVar(&constant, "constant", "", "answer every record with this text instead of calling the model")
	f.BoolVar(&contains, "contains", false, "also score outputs that merely contain the expected text")
	f.IntVar(&concurrency, "concurrency", 1, "records evaluated in parallel")
	return cmd
}
