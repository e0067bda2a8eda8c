// Package ollamaapi wraps the official Ollama API client for the management
// endpoints of a local server. Chat completion goes through langchaingo's
// ollama package; this client only answers questions such as "which models
// are pulled?".
package ollamaapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// DefaultBaseURL is where a local Ollama listens unless OLLAMA_HOST says otherwise.
const DefaultBaseURL = "http://127.0.0.1:11434"

// ErrInvalidResponse is returned when the server answers with malformed JSON.
var ErrInvalidResponse = errors.New("invalid response")

// Client talks to the Ollama REST API.
type Client struct {
	api *api.Client
}

// Option is a function that configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL sets the server URL.
func WithBaseURL(baseURL string) Option {
	return func(opts *clientOptions) {
		opts.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *clientOptions) {
		opts.httpClient = client
	}
}

// New creates a Client. The base URL defaults to $OLLAMA_HOST, then DefaultBaseURL.
func New(opts ...Option) (*Client, error) {
	options := &clientOptions{
		baseURL:    HostFromEnv(),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(options)
	}
	base, err := url.Parse(strings.TrimSuffix(options.baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url %q: %w", options.baseURL, err)
	}
	return &Client{api: api.NewClient(base, options.httpClient)}, nil
}

// HostFromEnv resolves OLLAMA_HOST the way the Ollama CLI does.
func HostFromEnv() string {
	return envconfig.Host().String()
}

// Model is one locally available model.
type Model = api.ListModelResponse

// List returns the locally available models.
func (c *Client) List(ctx context.Context) ([]Model, error) {
	resp, err := c.api.List(ctx)
	if err != nil {
		return nil, wrapError(err)
	}
	return resp.Models, nil
}

// ModelNames returns the model identifiers reported by List.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	models, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(models))
	for _, m := range models {
		name := m.Model
		if name == "" {
			name = m.Name
		}
		names = append(names, name)
	}
	return names, nil
}

// Version returns the server version.
func (c *Client) Version(ctx context.Context) (string, error) {
	v, err := c.api.Version(ctx)
	if err != nil {
		return "", wrapError(err)
	}
	return v, nil
}

func wrapError(err error) error {
	var status api.StatusError
	if errors.As(err, &status) {
		return fmt.Errorf("unexpected status code: %d, body: %s", status.StatusCode, status.ErrorMessage)
	}
	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntax) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return fmt.Errorf("do request: %w", err)
}
