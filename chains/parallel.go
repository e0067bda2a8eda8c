package chains

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Branch is one named arm of a Parallel.
type Branch struct {
	Name   string
	Runner Runner
}

// Combiner merges branch outputs into one text.
type Combiner func(outputs map[string]string) string

// Combine returns a Combiner that fills format with the outputs of keys in
// order.
func Combine(format string, keys ...string) Combiner {
	return func(outputs map[string]string) string {
		args := make([]any, len(keys))
		for i, k := range keys {
			args[i] = outputs[k]
		}
		return fmt.Sprintf(format, args...)
	}
}

// ProsCons joins the "pros" and "cons" branches of a product review.
var ProsCons = Combine("Pros:\n%s\n\nCons:\n%s", "pros", "cons")

// Parallel runs its branches concurrently on the same values. The first
// failing branch cancels the others.
type Parallel struct {
	Branches []Branch
	Combine  Combiner
}

// NewParallel creates a parallel chain.
func NewParallel(branches ...Branch) *Parallel {
	return &Parallel{Branches: branches}
}

// WithCombiner sets the function used by Invoke.
func (p *Parallel) WithCombiner(c Combiner) *Parallel {
	p.Combine = c
	return p
}

// Run executes every branch and returns the outputs keyed by branch name.
func (p *Parallel) Run(ctx context.Context, values map[string]any) (map[string]string, error) {
	if len(p.Branches) == 0 {
		return nil, ErrNoSteps
	}
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	outputs := make(map[string]string, len(p.Branches))
	for _, b := range p.Branches {
		g.Go(func() error {
			out, err := b.Runner.Invoke(gctx, values)
			if err != nil {
				return fmt.Errorf("branch %s: %w", b.Name, err)
			}
			mu.Lock()
			outputs[b.Name] = out
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// Invoke runs the branches and combines them. Without a Combiner outputs are
// joined in branch order separated by blank lines.
func (p *Parallel) Invoke(ctx context.Context, values map[string]any) (string, error) {
	outputs, err := p.Run(ctx, values)
	if err != nil {
		return "", err
	}
	if p.Combine != nil {
		return p.Combine(outputs), nil
	}
	parts := make([]string, 0, len(p.Branches))
	for _, b := range p.Branches {
		parts = append(parts, outputs[b.Name])
	}
	return strings.Join(parts, "\n\n"), nil
}
