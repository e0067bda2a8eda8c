package chains

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smallnest/langlab/log"
)

// DefaultRoute is the destination used when no destination name matches.
const DefaultRoute = "DEFAULT"

// Destination is a named chain a Router can send questions to.
type Destination struct {
	Name   string
	Runner Runner
}

// RouteResult describes one routed question.
type RouteResult struct {
	Destination  string
	RouterOutput string
	Answer       string
}

// Router classifies a question with a model and forwards it to the matching
// destination. The question is passed to every chain as InputKey.
type Router struct {
	Classifier   Runner
	Destinations []Destination
	Default      Runner
	InputKey     string
}

// NewRouter creates a router using the "input" variable.
func NewRouter(classifier Runner, def Runner, destinations ...Destination) *Router {
	return &Router{
		Classifier:   classifier,
		Destinations: destinations,
		Default:      def,
		InputKey:     "input",
	}
}

// Select returns the first destination, in declaration order, whose name
// occurs in the classifier output. The output is compared lower-cased and
// trimmed.
func (r *Router) Select(classifierOutput string) string {
	out := strings.ToLower(strings.TrimSpace(classifierOutput))
	for _, d := range r.Destinations {
		if strings.Contains(out, strings.ToLower(d.Name)) {
			return d.Name
		}
	}
	return DefaultRoute
}

// Route classifies and answers question.
func (r *Router) Route(ctx context.Context, question string) (RouteResult, error) {
	values := Values(r.InputKey, question)
	raw, err := r.Classifier.Invoke(ctx, values)
	if err != nil {
		return RouteResult{}, fmt.Errorf("classify: %w", err)
	}
	res := RouteResult{
		RouterOutput: strings.ToLower(strings.TrimSpace(raw)),
		Destination:  r.Select(raw),
	}
	log.Debug("router: %q -> %s", question, res.Destination)

	target := r.Default
	for _, d := range r.Destinations {
		if d.Name == res.Destination {
			target = d.Runner
			break
		}
	}
	if target == nil {
		return res, errors.New("router has no default chain")
	}
	res.Answer, err = target.Invoke(ctx, values)
	if err != nil {
		return res, fmt.Errorf("%s: %w", res.Destination, err)
	}
	return res, nil
}

// Invoke routes the question stored under InputKey and returns the answer.
func (r *Router) Invoke(ctx context.Context, values map[string]any) (string, error) {
	q, ok := values[r.InputKey]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingVariable, r.InputKey)
	}
	res, err := r.Route(ctx, fmt.Sprint(q))
	return res.Answer, err
}
