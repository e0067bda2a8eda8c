package models

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/smallnest/langlab/config"
	"github.com/smallnest/langlab/llms/ollamaapi"
	"github.com/smallnest/langlab/llms/openaicompat"
)

func newOllama(_ context.Context, modelName string, p config.Params) (llms.Model, error) {
	baseURL := p.BaseURL
	if baseURL == "" {
		baseURL = ollamaapi.HostFromEnv()
	}
	return ollama.New(ollama.WithModel(modelName), ollama.WithServerURL(baseURL))
}

func newLlamaCpp(_ context.Context, modelName string, p config.Params) (llms.Model, error) {
	return openaicompat.New(
		openaicompat.WithModel(modelName),
		openaicompat.WithBaseURL(p.BaseURL),
		openaicompat.WithAPIKey(p.APIKey),
	)
}

func newOpenAI(_ context.Context, modelName string, p config.Params) (llms.Model, error) {
	opts := []openai.Option{openai.WithModel(modelName)}
	if p.APIKey != "" {
		opts = append(opts, openai.WithToken(p.APIKey))
	}
	if p.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(p.BaseURL))
	}
	return openai.New(opts...)
}

func newAnthropic(_ context.Context, modelName string, p config.Params) (llms.Model, error) {
	opts := []anthropic.Option{anthropic.WithModel(modelName)}
	if p.APIKey != "" {
		opts = append(opts, anthropic.WithToken(p.APIKey))
	}
	if p.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(p.BaseURL))
	}
	return anthropic.New(opts...)
}

func newMistral(_ context.Context, modelName string, p config.Params) (llms.Model, error) {
	opts := []mistral.Option{mistral.WithModel(modelName)}
	if p.APIKey != "" {
		opts = append(opts, mistral.WithAPIKey(p.APIKey))
	}
	return mistral.New(opts...)
}

func newGoogle(ctx context.Context, modelName string, p config.Params) (llms.Model, error) {
	opts := []googleai.Option{googleai.WithDefaultModel(modelName)}
	if p.APIKey != "" {
		opts = append(opts, googleai.WithAPIKey(p.APIKey))
	}
	if p.MaxTokens > 0 {
		opts = append(opts, googleai.WithDefaultMaxTokens(p.MaxTokens))
	}
	if p.Temperature != nil {
		opts = append(opts, googleai.WithDefaultTemperature(*p.Temperature))
	}
	return googleai.New(ctx, opts...)
}

func (s *Switcher) registerBuiltins() {
	s.RegisterWithDefaults("ollama", newOllama, config.Params{Temperature: float(0.1)})
	s.RegisterWithDefaults("llamacpp", newLlamaCpp, config.Params{
		Temperature: float(0.1),
		MaxTokens:   100,
		APIKey:      openaicompat.DefaultAPIKey,
		BaseURL:     openaicompat.DefaultBaseURL,
	})
	s.Register("openai", newOpenAI)
	s.Register("anthropic", newAnthropic)
	s.Register("mistral", newMistral)
	s.Register("google", newGoogle)
}
