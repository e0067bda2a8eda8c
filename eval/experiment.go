package eval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"golang.org/x/sync/errgroup"

	"github.com/smallnest/langlab/log"
)

var (
	// ErrEmptyDataset is returned for datasets without records.
	ErrEmptyDataset = errors.New("dataset has no records")
	// ErrNoTask is returned by Run when the experiment has no Task.
	ErrNoTask = errors.New("experiment has no task")
)

// Task produces an output for a record input.
type Task func(ctx context.Context, input string) (string, error)

// Evaluator judges one output.
type Evaluator func(input, output, expected string) bool

// ExactMatch passes when output equals expected.
func ExactMatch(_, output, expected string) bool { return output == expected }

// ContainsMatch passes when output contains expected, ignoring case.
func ContainsMatch(_, output, expected string) bool {
	return strings.Contains(strings.ToLower(output), strings.ToLower(expected))
}

// Constant is a task that always answers output.
func Constant(output string) Task {
	return func(context.Context, string) (string, error) { return output, nil }
}

// ModelTask asks model each input as a single prompt.
func ModelTask(model llms.Model, opts ...llms.CallOption) Task {
	return func(ctx context.Context, input string) (string, error) {
		out, err := llms.GenerateFromSinglePrompt(ctx, model, input, opts...)
		return strings.TrimSpace(out), err
	}
}

// Experiment runs a task over a dataset and scores every output.
type Experiment struct {
	Name        string
	Description string
	Dataset     Dataset
	Task        Task
	Evaluators  map[string]Evaluator
	Config      map[string]any

	// Concurrency bounds parallel task calls; values below 1 mean 1.
	Concurrency int
}

// RecordResult is the outcome for one record.
type RecordResult struct {
	Record
	Output  string          `json:"output"`
	Error   string          `json:"error,omitempty"`
	Scores  map[string]bool `json:"scores"`
	Passed  bool            `json:"passed"`
	Latency time.Duration   `json:"latency"`
}

// Report is the outcome of Experiment.Run.
type Report struct {
	ID         string         `json:"id"`
	Experiment string         `json:"experiment"`
	Dataset    string         `json:"dataset"`
	Results    []RecordResult `json:"results"`
}

// Passed counts passing records.
func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed {
			n++
		}
	}
	return n
}

// PassRate is the share of passing records in [0, 1].
func (r *Report) PassRate() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	return float64(r.Passed()) / float64(len(r.Results))
}

// Summary is a one line description of the report.
func (r *Report) Summary() string {
	return fmt.Sprintf("%s: %d/%d passed (%.1f%%)", r.Experiment, r.Passed(), len(r.Results), r.PassRate()*100)
}

// Run executes the task for every record. Task errors fail the record and do
// not stop the experiment; a cancelled context does.
func (e *Experiment) Run(ctx context.Context) (*Report, error) {
	if e.Task == nil {
		return nil, ErrNoTask
	}
	if len(e.Dataset.Records) == 0 {
		return nil, ErrEmptyDataset
	}
	evaluators := e.Evaluators
	if len(evaluators) == 0 {
		evaluators = map[string]Evaluator{"exact_match": ExactMatch}
	}
	names := make([]string, 0, len(evaluators))
	for name := range evaluators {
		names = append(names, name)
	}
	sort.Strings(names)

	report := &Report{
		ID:         uuid.NewString(),
		Experiment: e.Name,
		Dataset:    e.Dataset.Name,
		Results:    make([]RecordResult, len(e.Dataset.Records)),
	}
	log.Info("running experiment %s on %d records", e.Name, len(e.Dataset.Records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.Concurrency, 1))
	var mu sync.Mutex
	for i, rec := range e.Dataset.Records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := RecordResult{Record: rec, Scores: make(map[string]bool, len(names))}
			start := time.Now()
			out, err := e.Task(gctx, rec.Input)
			res.Latency = time.Since(start)
			res.Output = out
			res.Passed = err == nil
			if err != nil {
				res.Error = err.Error()
				log.Warn("record %d failed: %v", i, err)
			}
			for _, name := range names {
				ok := err == nil && evaluators[name](rec.Input, out, rec.Expected)
				res.Scores[name] = ok
				res.Passed = res.Passed && ok
			}
			mu.Lock()
			report.Results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Info("%s", report.Summary())
	return report, nil
}
