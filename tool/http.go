package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent by Fetcher unless overridden. Several data
// providers reject requests without a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// DefaultMaxBodySize caps how much of a response body Fetcher reads.
const DefaultMaxBodySize = 4 << 20

var (
	// ErrInvalidJSON is returned by GetJSON when the body is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON response")
	// ErrResponseTooLarge is returned when a body exceeds the size cap.
	ErrResponseTooLarge = errors.New("response body too large")
)

// Fetcher performs GET requests for the data tools with a per-host rate limit.
type Fetcher struct {
	Client    *http.Client
	UserAgent string
	// MaxBodySize limits response bodies; zero means DefaultMaxBodySize.
	MaxBodySize int64

	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// FetcherOption configures NewFetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the HTTP client used by the fetcher.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.Client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.UserAgent = ua
	}
}

// WithRateLimit sets the per-host request rate. rate.Inf disables limiting.
func WithRateLimit(limit rate.Limit, burst int) FetcherOption {
	return func(f *Fetcher) {
		if burst < 1 {
			burst = 1
		}
		f.limit = limit
		f.burst = burst
	}
}

// NewFetcher creates a fetcher allowing 2 requests per second per host.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		Client:    &http.Client{Timeout: 30 * time.Second},
		UserAgent: DefaultUserAgent,
		limit:     rate.Limit(2),
		burst:     4,
		limiters:  make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var (
	defaultFetcherOnce sync.Once
	defaultFetcher     *Fetcher
)

// DefaultFetcher returns the process wide fetcher.
func DefaultFetcher() *Fetcher {
	defaultFetcherOnce.Do(func() {
		defaultFetcher = NewFetcher()
	})
	return defaultFetcher
}

func fetcherOrDefault(f *Fetcher) *Fetcher {
	if f == nil {
		return DefaultFetcher()
	}
	return f
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.limiters == nil {
		f.limiters = make(map[string]*rate.Limiter)
	}
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(f.limit, f.burst)
		f.limiters[host] = l
	}
	return l
}

// Get fetches rawURL and returns the body of a 200 response.
func (f *Fetcher) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if err := f.limiter(u.Host).Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" && f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	limit := f.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrResponseTooLarge, limit, u.Host)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

// GetJSON fetches rawURL and parses the body with gjson.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, header http.Header) (gjson.Result, error) {
	body, err := f.Get(ctx, rawURL, header)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, ErrInvalidJSON
	}
	return gjson.ParseBytes(body), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
