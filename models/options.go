package models

import (
	"github.com/smallnest/langlab/config"
	"github.com/smallnest/langlab/graph"
	"github.com/smallnest/langlab/metrics"
)

type settings struct {
	params   config.Params
	recorder *metrics.Recorder
	tracer   *graph.Tracer
}

// Option overrides a generation parameter or attaches instrumentation.
type Option func(*settings)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(s *settings) { s.params.Temperature = &t }
}

// WithMaxTokens limits the length of each completion.
func WithMaxTokens(n int) Option {
	return func(s *settings) { s.params.MaxTokens = n }
}

// WithBaseURL points the provider at a different server.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.params.BaseURL = url }
}

// WithAPIKey sets the provider credential.
func WithAPIKey(key string) Option {
	return func(s *settings) { s.params.APIKey = key }
}

// WithParams applies every non-zero field of p.
func WithParams(p config.Params) Option {
	return func(s *settings) {
		if p.Temperature != nil {
			t := *p.Temperature
			s.params.Temperature = &t
		}
		if n := p.TokenLimit(); n > 0 {
			s.params.MaxTokens = n
		}
		if p.BaseURL != "" {
			s.params.BaseURL = p.BaseURL
		}
		if p.APIKey != "" {
			s.params.APIKey = p.APIKey
		}
	}
}

// WithRecorder records call counts and latency of the returned model.
func WithRecorder(r *metrics.Recorder) Option {
	return func(s *settings) { s.recorder = r }
}

// WithTracer records a span per model call. Calls made inside a traced graph
// node become children of the node span.
func WithTracer(t *graph.Tracer) Option {
	return func(s *settings) { s.tracer = t }
}

// withDefaults fills unset fields of p from d.
func withDefaults(p, d config.Params) config.Params {
	if p.Temperature == nil && d.Temperature != nil {
		t := *d.Temperature
		p.Temperature = &t
	}
	if p.MaxTokens == 0 {
		p.MaxTokens = d.TokenLimit()
	}
	if p.BaseURL == "" {
		p.BaseURL = d.BaseURL
	}
	if p.APIKey == "" {
		p.APIKey = d.APIKey
	}
	return p
}

func float(v float64) *float64 { return &v }
