package tool

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SearchResult is one web search hit.
type SearchResult struct {
	Title string
	Body  string
	URL   string
}

// DuckDuckGo searches the web through the DuckDuckGo HTML endpoint.
type DuckDuckGo struct {
	BaseURL    string
	MaxResults int
	fetcher    *Fetcher
}

var _ SchemaTool = (*DuckDuckGo)(nil)

// DuckDuckGoOption configures NewDuckDuckGo.
type DuckDuckGoOption func(*DuckDuckGo)

// WithDuckDuckGoBaseURL sets the HTML search endpoint.
func WithDuckDuckGoBaseURL(baseURL string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.BaseURL = baseURL
	}
}

// WithMaxResults sets the number of results returned (default 5).
func WithMaxResults(n int) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		if n < 1 {
			n = 1
		}
		d.MaxResults = n
	}
}

// NewDuckDuckGo creates the search tool.
func NewDuckDuckGo(f *Fetcher, opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		BaseURL:    "https://html.duckduckgo.com/html/",
		MaxResults: 5,
		fetcher:    fetcherOrDefault(f),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the name of the tool.
func (d *DuckDuckGo) Name() string { return "search" }

// Description returns the description of the tool.
func (d *DuckDuckGo) Description() string { return "Search the web using DuckDuckGo." }

// Schema returns the JSON schema of the tool arguments.
func (d *DuckDuckGo) Schema() map[string]any {
	return ObjectSchema(StringParam("query", "Search query"))
}

// Call runs the search and formats the top results.
func (d *DuckDuckGo) Call(ctx context.Context, input string) (string, error) {
	results, err := d.Search(ctx, ParseArgs(input).String("query"))
	if err != nil {
		return fmt.Sprintf("Search error: %v", err), nil
	}
	if len(results) == 0 {
		return "No results found.", nil
	}
	parts := make([]string, 0, len(results))
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("%d. %s\n   %s\n   %s", i+1, r.Title, r.Body, r.URL))
	}
	return strings.Join(parts, "\n\n"), nil
}

// Search returns up to MaxResults organic results.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	body, err := d.fetcher.Get(ctx, fmt.Sprintf("%s?%s", d.BaseURL, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}

	var results []SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find(".result__a").First()
		if link.Length() == 0 {
			return true
		}
		r := SearchResult{
			Title: collapseSpace(link.Text()),
			Body:  collapseSpace(s.Find(".result__snippet").First().Text()),
		}
		if href, ok := link.Attr("href"); ok {
			r.URL = resolveRedirect(href)
		}
		if r.Title == "" {
			r.Title = "No title"
		}
		if r.Body == "" {
			r.Body = "No description"
		}
		results = append(results, r)
		return len(results) < d.MaxResults
	})
	return results, nil
}

// resolveRedirect unwraps //duckduckgo.com/l/?uddg=<target> links.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
