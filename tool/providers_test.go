package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func testFetcher() *Fetcher {
	return NewFetcher(WithRateLimit(rate.Inf, 1))
}

func TestFetcher_MaxBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	f := NewFetcher(WithRateLimit(rate.Inf, 1))
	f.MaxBodySize = 10
	_, err := f.Get(context.Background(), server.URL, nil)
	assert.ErrorIs(t, err, ErrResponseTooLarge)

	f.MaxBodySize = 100
	body, err := f.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Len(t, body, 100)
}

func TestFetcher(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"value": 42}`))
		case "/html":
			w.Write([]byte(`<html></html>`))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer server.Close()

	f := NewFetcher(WithUserAgent("langlab-test"), WithRateLimit(rate.Inf, 1))
	ctx := context.Background()

	doc, err := f.GetJSON(ctx, server.URL+"/ok", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), doc.Get("value").Int())
	assert.Equal(t, "langlab-test", agent)

	_, err = f.GetJSON(ctx, server.URL+"/html", nil)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = f.Get(ctx, server.URL+"/missing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 404")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = f.Get(cancelled, server.URL+"/ok", nil)
	assert.Error(t, err)
}

func TestWeather(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/London" || r.URL.Query().Get("format") != "j1" {
			http.Error(w, "unknown location", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current_condition":[{"temp_C":"12","weatherDesc":[{"value":"Partly cloudy"}]}]}`))
	}))
	defer server.Close()

	w := NewWeather(testFetcher(), WithWeatherBaseURL(server.URL+"/"))
	ctx := context.Background()

	out, err := w.Call(ctx, `{"location": "London"}`)
	require.NoError(t, err)
	assert.Equal(t, "Weather in London: 12°C, Partly cloudy", out)

	out, err = w.Call(ctx, "Atlantis")
	require.NoError(t, err)
	assert.Contains(t, out, "Weather error: Could not fetch weather for Atlantis. Error:")
}

const ddgPage = `<html><body>
<div class="result result--ad"><h2><a class="result__a" href="https://ads.example.com">Buy now</a></h2></div>
<div class="result results_links web-result">
  <h2 class="result__title"><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&amp;rut=1">The Go   Programming Language</a></h2>
  <a class="result__snippet">Go is an open source programming language.</a>
</div>
<div class="result results_links web-result">
  <h2 class="result__title"><a class="result__a" href="https://en.wikipedia.org/wiki/Go">Go (programming language)</a></h2>
</div>
</body></html>`

func TestDuckDuckGo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "nothing" {
			w.Write([]byte(`<html><body><div class="no-results"></div></body></html>`))
			return
		}
		w.Write([]byte(ddgPage))
	}))
	defer server.Close()

	d := NewDuckDuckGo(testFetcher(), WithDuckDuckGoBaseURL(server.URL+"/html/"))
	ctx := context.Background()

	results, err := d.Search(ctx, "golang")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://go.dev/", results[0].URL)
	assert.Equal(t, "No description", results[1].Body)

	out, err := d.Call(ctx, `{"query": "golang"}`)
	require.NoError(t, err)
	assert.Equal(t,
		"1. The Go Programming Language\n   Go is an open source programming language.\n   https://go.dev/\n\n"+
			"2. Go (programming language)\n   No description\n   https://en.wikipedia.org/wiki/Go", out)

	out, err = d.Call(ctx, "nothing")
	require.NoError(t, err)
	assert.Equal(t, "No results found.", out)

	one := NewDuckDuckGo(testFetcher(), WithDuckDuckGoBaseURL(server.URL), WithMaxResults(1))
	results, err = one.Search(ctx, "golang")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestWikipedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "query" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case q.Get("list") == "search":
			switch q.Get("srsearch") {
			case "golden gate":
				w.Write([]byte(`{"query":{"search":[{"title":"Golden Gate Bridge"},{"title":"Golden Gate"}]}}`))
			case "mercury":
				w.Write([]byte(`{"query":{"search":[{"title":"Mercury"}]}}`))
			case "ghost":
				w.Write([]byte(`{"query":{"search":[{"title":"Ghost page"},{"title":"Ghost"}]}}`))
			default:
				w.Write([]byte(`{"query":{"search":[]}}`))
			}
		case q.Get("prop") == "links":
			w.Write([]byte(`{"query":{"pages":[{"title":"Mercury","links":[
				{"title":"Mercury (planet)"},{"title":"Mercury (element)"},{"title":"Mercury (mythology)"},
				{"title":"Mercury Records"},{"title":"Freddie Mercury"},{"title":"Mercury program"}]}]}}`))
		default:
			switch q.Get("titles") {
			case "Golden Gate Bridge":
				assert.Equal(t, "5", q.Get("exsentences"))
				w.Write([]byte(`{"query":{"pages":[{"title":"Golden Gate Bridge","extract":"The Golden Gate Bridge is a suspension bridge."}]}}`))
			case "Mercury":
				w.Write([]byte(`{"query":{"pages":[{"title":"Mercury","pageprops":{"disambiguation":""}}]}}`))
			case "Ghost":
				w.Write([]byte(`{"query":{"pages":[{"title":"Ghost","extract":"A ghost is a spirit."}]}}`))
			default:
				w.Write([]byte(`{"query":{"pages":[{"title":"` + q.Get("titles") + `","missing":true}]}}`))
			}
		}
	}))
	defer server.Close()

	wiki := NewWikipedia(testFetcher(), WithWikipediaBaseURL(server.URL+"/w/api.php"))
	ctx := context.Background()

	out, err := wiki.Call(ctx, `{"query": "golden gate"}`)
	require.NoError(t, err)
	assert.Equal(t, "Article: Golden Gate Bridge\n\nThe Golden Gate Bridge is a suspension bridge.", out)

	out, err = wiki.Call(ctx, "mercury")
	require.NoError(t, err)
	assert.Equal(t, "'mercury' is ambiguous. Did you mean one of these?\n"+
		"- Mercury (planet)\n- Mercury (element)\n- Mercury (mythology)\n- Mercury Records\n- Freddie Mercury", out)

	out, err = wiki.Call(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, "Article: Ghost\n\nA ghost is a spirit.", out)

	out, err = wiki.Call(ctx, "zzzz")
	require.NoError(t, err)
	assert.Equal(t, "No Wikipedia articles found for 'zzzz'.", out)
}

func TestWikipediaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{invalid json}`))
	}))
	defer server.Close()

	out, err := NewWikipedia(testFetcher(), WithWikipediaBaseURL(server.URL)).Call(context.Background(), "test")
	require.NoError(t, err)
	assert.Equal(t, "Wikipedia error: invalid JSON response", out)
}
