package tool

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var (
	errPageMissing = errors.New("page does not exist")
)

// disambiguationError lists the pages an ambiguous title may refer to.
type disambiguationError struct {
	title   string
	options []string
}

func (e *disambiguationError) Error() string {
	return fmt.Sprintf("%q may refer to: %s", e.title, strings.Join(e.options, ", "))
}

// Wikipedia searches Wikipedia through the MediaWiki action API.
type Wikipedia struct {
	BaseURL   string
	Results   int
	Sentences int
	fetcher   *Fetcher
}

var _ SchemaTool = (*Wikipedia)(nil)

// WikipediaOption configures NewWikipedia.
type WikipediaOption func(*Wikipedia)

// WithWikipediaBaseURL sets the api.php endpoint.
func WithWikipediaBaseURL(baseURL string) WikipediaOption {
	return func(w *Wikipedia) {
		w.BaseURL = baseURL
	}
}

// NewWikipedia creates the wikipedia_search tool.
func NewWikipedia(f *Fetcher, opts ...WikipediaOption) *Wikipedia {
	w := &Wikipedia{
		BaseURL:   "https://en.wikipedia.org/w/api.php",
		Results:   5,
		Sentences: 5,
		fetcher:   fetcherOrDefault(f),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name returns the name of the tool.
func (w *Wikipedia) Name() string { return "wikipedia_search" }

// Description returns the description of the tool.
func (w *Wikipedia) Description() string {
	return "Search Wikipedia for a given query and return a summary from the results."
}

// Schema returns the JSON schema of the tool arguments.
func (w *Wikipedia) Schema() map[string]any {
	return ObjectSchema(StringParam("query", "Topic to look up"))
}

// Call searches and summarizes the best match. When the first hit does not
// exist the second one is tried.
func (w *Wikipedia) Call(ctx context.Context, input string) (string, error) {
	query := ParseArgs(input).String("query")
	titles, err := w.Search(ctx, query)
	if err != nil {
		return fmt.Sprintf("Wikipedia error: %v", err), nil
	}
	if len(titles) == 0 {
		return fmt.Sprintf("No Wikipedia articles found for '%s'.", query), nil
	}

	summary, err := w.Summary(ctx, titles[0])
	var dis *disambiguationError
	switch {
	case err == nil:
		return fmt.Sprintf("Article: %s\n\n%s", titles[0], summary), nil
	case errors.As(err, &dis):
		opts := dis.options
		if len(opts) > 5 {
			opts = opts[:5]
		}
		lines := make([]string, len(opts))
		for i, o := range opts {
			lines[i] = "- " + o
		}
		return fmt.Sprintf("'%s' is ambiguous. Did you mean one of these?\n", query) + strings.Join(lines, "\n"), nil
	case errors.Is(err, errPageMissing):
		if len(titles) < 2 {
			return fmt.Sprintf("Page not found for '%s'.", query), nil
		}
		summary, err := w.Summary(ctx, titles[1])
		if err != nil {
			n := min(len(titles), 3)
			return fmt.Sprintf("Found these articles but couldn't retrieve summary: %s", strings.Join(titles[:n], ", ")), nil
		}
		return fmt.Sprintf("Article: %s\n\n%s", titles[1], summary), nil
	default:
		return fmt.Sprintf("Wikipedia error: %v", err), nil
	}
}

// Search returns the titles of the best matching pages.
func (w *Wikipedia) Search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(w.Results))
	params.Set("format", "json")
	params.Set("formatversion", "2")

	doc, err := w.fetcher.GetJSON(ctx, w.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if msg := doc.Get("error.info"); msg.Exists() {
		return nil, errors.New(msg.String())
	}
	var titles []string
	for _, hit := range doc.Get("query.search").Array() {
		titles = append(titles, hit.Get("title").String())
	}
	return titles, nil
}

// Summary returns the plain text intro of title limited to Sentences.
func (w *Wikipedia) Summary(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|pageprops")
	params.Set("exsentences", strconv.Itoa(w.Sentences))
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("titles", title)
	params.Set("format", "json")
	params.Set("formatversion", "2")

	doc, err := w.fetcher.GetJSON(ctx, w.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	page := doc.Get("query.pages.0")
	if !page.Exists() || page.Get("missing").Bool() || page.Get("invalid").Bool() {
		return "", errPageMissing
	}
	if page.Get("pageprops.disambiguation").Exists() {
		options, err := w.links(ctx, page.Get("title").String())
		if err != nil {
			return "", err
		}
		return "", &disambiguationError{title: title, options: options}
	}
	return strings.TrimSpace(page.Get("extract").String()), nil
}

func (w *Wikipedia) links(ctx context.Context, title string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "links")
	params.Set("plnamespace", "0")
	params.Set("pllimit", "20")
	params.Set("titles", title)
	params.Set("format", "json")
	params.Set("formatversion", "2")

	doc, err := w.fetcher.GetJSON(ctx, w.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, l := range doc.Get("query.pages.0.links").Array() {
		out = append(out, l.Get("title").String())
	}
	return out, nil
}
