// Package eval runs small offline experiments: a Task is applied to every
// record of a Dataset and each output is judged by named Evaluators.
//
//	exp := &eval.Experiment{
//		Name:       "demo_capitals_experiment",
//		Dataset:    eval.CapitalsDataset(),
//		Task:       eval.ModelTask(model),
//		Evaluators: map[string]eval.Evaluator{"exact_match": eval.ExactMatch},
//	}
//	report, err := exp.Run(ctx)
//	fmt.Println(report.Summary())
package eval
