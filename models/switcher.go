// Package models maps a (provider, model name, parameters) tuple to a
// ready-to-use llms.Model.
package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langlab/config"
	"github.com/smallnest/langlab/llms/ollamaapi"
	"github.com/smallnest/langlab/llms/openaicompat"
	"github.com/smallnest/langlab/log"
)

// ErrUnsupportedProvider is returned for provider names with no factory.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// Factory builds a client for one provider.
type Factory func(ctx context.Context, modelName string, p config.Params) (llms.Model, error)

type provider struct {
	factory  Factory
	defaults config.Params
}

// Switcher is a registry of providers.
type Switcher struct {
	mu        sync.RWMutex
	providers map[string]provider
	order     []string

	// OllamaBaseURL is used by ListOllamaModels; empty means $OLLAMA_HOST.
	OllamaBaseURL string
	// HTTPClient is used for model listing requests.
	HTTPClient *http.Client
}

// NewSwitcher returns a Switcher with the built-in providers: ollama,
// llamacpp, openai, anthropic, mistral and google.
func NewSwitcher() *Switcher {
	s := &Switcher{providers: make(map[string]provider)}
	s.registerBuiltins()
	return s
}

// Register adds or replaces a provider.
func (s *Switcher) Register(name string, f Factory) {
	s.RegisterWithDefaults(name, f, config.Params{})
}

// RegisterWithDefaults adds a provider whose unset parameters fall back to defaults.
func (s *Switcher) RegisterWithDefaults(name string, f Factory, defaults config.Params) {
	key := strings.ToLower(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[key]; !ok {
		s.order = append(s.order, key)
	}
	s.providers[key] = provider{factory: f, defaults: defaults}
}

// ListProviders returns provider names in registration order.
func (s *Switcher) ListProviders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// GetModel builds a model. The provider name is matched case-insensitively.
func (s *Switcher) GetModel(ctx context.Context, providerName, modelName string, opts ...Option) (*Model, error) {
	key := strings.ToLower(strings.TrimSpace(providerName))
	s.mu.RLock()
	p, ok := s.providers[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s. Supported: %v", ErrUnsupportedProvider, providerName, s.ListProviders())
	}

	var st settings
	for _, opt := range opts {
		opt(&st)
	}
	params := withDefaults(st.params, p.defaults)

	llm, err := p.factory(ctx, modelName, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s model %s: %w", key, modelName, err)
	}
	log.Debug("created %s model %s", key, modelName)

	return newModel(llm, Info{
		Provider:    key,
		Name:        modelName,
		BaseURL:     params.BaseURL,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}, st), nil
}

// FromPreset builds the model a preset describes; overrides win over the preset.
func (s *Switcher) FromPreset(ctx context.Context, preset config.Preset, overrides ...Option) (*Model, error) {
	opts := append([]Option{WithParams(preset.Merged())}, overrides...)
	m, err := s.GetModel(ctx, preset.Provider, preset.ModelName, opts...)
	if err != nil {
		return nil, err
	}
	m.Info.Preset = preset.Name
	return m, nil
}

// Configured builds the active preset of presets.
func (s *Switcher) Configured(ctx context.Context, presets *config.Presets, overrides ...Option) (*Model, error) {
	preset, err := presets.ActivePreset()
	if err != nil {
		return nil, err
	}
	return s.FromPreset(ctx, preset, overrides...)
}

// ListOllamaModels lists the models pulled into the local Ollama server.
func (s *Switcher) ListOllamaModels(ctx context.Context) ([]string, error) {
	opts := []ollamaapi.Option{}
	if s.OllamaBaseURL != "" {
		opts = append(opts, ollamaapi.WithBaseURL(s.OllamaBaseURL))
	}
	if s.HTTPClient != nil {
		opts = append(opts, ollamaapi.WithHTTPClient(s.HTTPClient))
	}
	client, err := ollamaapi.New(opts...)
	if err != nil {
		return nil, err
	}
	names, err := client.ModelNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing Ollama models: %w", err)
	}
	return names, nil
}

// ListCompatibleModels lists the models served by an OpenAI compatible endpoint.
func (s *Switcher) ListCompatibleModels(ctx context.Context, baseURL string) ([]string, error) {
	opts := []openaicompat.Option{openaicompat.WithBaseURL(baseURL)}
	if s.HTTPClient != nil {
		opts = append(opts, openaicompat.WithHTTPClient(s.HTTPClient))
	}
	llm, err := openaicompat.New(opts...)
	if err != nil {
		return nil, err
	}
	return llm.ListModels(ctx)
}

var defaultSwitcher = NewSwitcher()

// Default returns the process wide Switcher.
func Default() *Switcher { return defaultSwitcher }

// GetModel builds a model with the default Switcher.
func GetModel(ctx context.Context, providerName, modelName string, opts ...Option) (*Model, error) {
	return defaultSwitcher.GetModel(ctx, providerName, modelName, opts...)
}

// Configured builds the active preset with the default Switcher.
func Configured(ctx context.Context, presets *config.Presets, overrides ...Option) (*Model, error) {
	return defaultSwitcher.Configured(ctx, presets, overrides...)
}
