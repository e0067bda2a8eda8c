package tool

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Weather reports current conditions from wttr.in.
type Weather struct {
	BaseURL string
	fetcher *Fetcher
}

var _ SchemaTool = (*Weather)(nil)

// WeatherOption configures NewWeather.
type WeatherOption func(*Weather)

// WithWeatherBaseURL sets the wttr.in compatible endpoint.
func WithWeatherBaseURL(baseURL string) WeatherOption {
	return func(w *Weather) {
		w.BaseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewWeather creates the get_current_weather tool. A nil fetcher uses
// DefaultFetcher.
func NewWeather(f *Fetcher, opts ...WeatherOption) *Weather {
	w := &Weather{
		BaseURL: "https://wttr.in",
		fetcher: fetcherOrDefault(f),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name returns the name of the tool.
func (w *Weather) Name() string { return "get_current_weather" }

// Description returns the description of the tool.
func (w *Weather) Description() string {
	return "Get the current weather for a given location. Use city name like 'New York', 'London', 'Tokyo'."
}

// Schema returns the JSON schema of the tool arguments.
func (w *Weather) Schema() map[string]any {
	return ObjectSchema(StringParam("location", "City name"))
}

// Call fetches the weather. Provider failures are returned as text.
func (w *Weather) Call(ctx context.Context, input string) (string, error) {
	location := ParseArgs(input).String("location")
	temp, desc, err := w.current(ctx, location)
	if err != nil {
		return fmt.Sprintf("Weather error: Could not fetch weather for %s. Error: %v", location, err), nil
	}
	return fmt.Sprintf("Weather in %s: %s°C, %s", location, temp, desc), nil
}

func (w *Weather) current(ctx context.Context, location string) (string, string, error) {
	if location == "" {
		return "", "", errors.New("empty location")
	}
	reqURL := fmt.Sprintf("%s/%s?format=j1", w.BaseURL, url.PathEscape(location))
	doc, err := w.fetcher.GetJSON(ctx, reqURL, nil)
	if err != nil {
		return "", "", err
	}
	cur := doc.Get("current_condition.0")
	if !cur.Exists() {
		return "", "", errors.New("no current conditions in response")
	}
	desc := strings.TrimSpace(cur.Get("weatherDesc.0.value").String())
	if desc == "" {
		desc = "N/A"
	}
	return cur.Get("temp_C").String(), desc, nil
}
