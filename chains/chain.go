package chains

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smallnest/langlab/log"
	"github.com/tmc/langchaingo/llms"
)

// ErrEmptyResponse is returned when the model returns no choices.
var ErrEmptyResponse = errors.New("model returned no choices")

// Runner is anything that turns template values into text.
type Runner interface {
	Invoke(ctx context.Context, values map[string]any) (string, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, values map[string]any) (string, error)

// Invoke calls f.
func (f RunnerFunc) Invoke(ctx context.Context, values map[string]any) (string, error) {
	return f(ctx, values)
}

// Transform post-processes a chain's output.
type Transform func(ctx context.Context, text string) (string, error)

// TrimSpace is a Transform removing surrounding whitespace.
func TrimSpace(_ context.Context, text string) (string, error) {
	return strings.TrimSpace(text), nil
}

// Chain pipes a prompt into a model and returns the reply text.
type Chain struct {
	Name    string
	Prompt  Formatter
	Model   llms.Model
	Options []llms.CallOption

	transforms []Transform
}

// New creates a chain. opts are passed to every model call.
func New(prompt Formatter, model llms.Model, opts ...llms.CallOption) *Chain {
	return &Chain{Prompt: prompt, Model: model, Options: opts}
}

// Named sets the name used in logs and errors.
func (c *Chain) Named(name string) *Chain {
	c.Name = name
	return c
}

// Then appends a transform applied to the model output.
func (c *Chain) Then(t Transform) *Chain {
	c.transforms = append(c.transforms, t)
	return c
}

// Invoke formats the prompt, calls the model and applies the transforms.
func (c *Chain) Invoke(ctx context.Context, values map[string]any) (string, error) {
	msgs, err := c.Prompt.FormatMessages(values)
	if err != nil {
		return "", fmt.Errorf("%sformat prompt: %w", c.prefix(), err)
	}
	log.Debug("chain %s: calling model with %d messages", c.Name, len(msgs))

	text, err := Generate(ctx, c.Model, msgs, c.Options...)
	if err != nil {
		return "", fmt.Errorf("%s%w", c.prefix(), err)
	}
	for _, t := range c.transforms {
		if text, err = t(ctx, text); err != nil {
			return "", fmt.Errorf("%stransform: %w", c.prefix(), err)
		}
	}
	return text, nil
}

func (c *Chain) prefix() string {
	if c.Name == "" {
		return ""
	}
	return c.Name + ": "
}

// Generate calls model and returns the content of the first choice.
func Generate(ctx context.Context, model llms.Model, msgs []llms.MessageContent, opts ...llms.CallOption) (string, error) {
	resp, err := model.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

// Values is shorthand for a single variable map.
func Values(key string, value any) map[string]any {
	return map[string]any{key: value}
}
