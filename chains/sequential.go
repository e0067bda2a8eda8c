package chains

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallnest/langlab/log"
)

// ErrNoSteps is returned when a Sequential or Parallel has nothing to run.
var ErrNoSteps = errors.New("no steps")

// Step is one stage of a Sequential. Its output is stored under Output and
// is visible to later steps as a template variable.
type Step struct {
	Output string
	Runner Runner
}

// Sequential runs steps in order over a shared set of values.
type Sequential struct {
	Steps []Step
}

// NewSequential creates a sequential chain.
func NewSequential(steps ...Step) *Sequential {
	return &Sequential{Steps: steps}
}

// Run executes every step and returns all step outputs keyed by Output.
// Inputs are not copied into the result.
func (s *Sequential) Run(ctx context.Context, inputs map[string]any) (map[string]string, error) {
	if len(s.Steps) == 0 {
		return nil, ErrNoSteps
	}
	values := make(map[string]any, len(inputs)+len(s.Steps))
	for k, v := range inputs {
		values[k] = v
	}

	outputs := make(map[string]string, len(s.Steps))
	for _, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}
		log.Debug("sequential: running step %s", step.Output)
		out, err := step.Runner.Invoke(ctx, values)
		if err != nil {
			return outputs, fmt.Errorf("step %s: %w", step.Output, err)
		}
		outputs[step.Output] = out
		values[step.Output] = out
	}
	return outputs, nil
}

// Invoke runs the chain and returns the last step's output.
func (s *Sequential) Invoke(ctx context.Context, inputs map[string]any) (string, error) {
	outputs, err := s.Run(ctx, inputs)
	if err != nil {
		return "", err
	}
	return outputs[s.Steps[len(s.Steps)-1].Output], nil
}
