package openaicompat

import (
	"net/http"
	"os"

	"github.com/tmc/langchaingo/callbacks"
)

const (
	// DefaultBaseURL is the llama.cpp server default.
	DefaultBaseURL = "http://localhost:8080/v1"
	// DefaultAPIKey is sent when the server does not check keys.
	DefaultAPIKey = "not-needed"
)

type options struct {
	apiKey           string
	baseURL          string
	model            string
	httpClient       *http.Client
	callbacksHandler callbacks.Handler
}

// Option is a function that configures an LLM.
type Option func(*options)

// WithAPIKey sets the bearer token. Defaults to $OPENAI_COMPAT_API_KEY or "not-needed".
func WithAPIKey(apiKey string) Option {
	return func(opts *options) {
		opts.apiKey = apiKey
	}
}

// WithBaseURL sets the endpoint root, including the /v1 suffix.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithModel sets the model name sent with every request.
func WithModel(model string) Option {
	return func(opts *options) {
		opts.model = model
	}
}

// WithHTTPClient sets the HTTP client for the LLM.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

// WithCallbacks sets the callbacks handler for the LLM.
func WithCallbacks(handler callbacks.Handler) Option {
	return func(opts *options) {
		opts.callbacksHandler = handler
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
