package graph

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultMermaidInkURL is the public mermaid.ink rendering service.
const DefaultMermaidInkURL = "https://mermaid.ink"

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// ErrNotPNG is returned when the renderer answers with something other than a PNG.
var ErrNotPNG = errors.New("renderer did not return a PNG image")

// MermaidRenderer renders Mermaid diagrams to PNG through mermaid.ink.
type MermaidRenderer struct {
	BaseURL    string
	HTTPClient *http.Client
	// Background is an optional hex color without '#', e.g. "FFFFFF".
	Background string
}

// NewMermaidRenderer returns a renderer for the public service.
func NewMermaidRenderer() *MermaidRenderer {
	return &MermaidRenderer{
		BaseURL:    DefaultMermaidInkURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RenderPNG returns the PNG bytes of diagram.
func (m *MermaidRenderer) RenderPNG(ctx context.Context, diagram string) ([]byte, error) {
	base := strings.TrimSuffix(m.BaseURL, "/")
	if base == "" {
		base = DefaultMermaidInkURL
	}
	url := fmt.Sprintf("%s/img/%s?type=png", base, base64.URLEncoding.EncodeToString([]byte(diagram)))
	if m.Background != "" {
		url += "&bgColor=" + m.Background
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := m.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to render diagram: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mermaid.ink returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if !bytes.HasPrefix(body, pngMagic) {
		return nil, ErrNotPNG
	}
	return body, nil
}

// MermaidPNG renders the graph's Mermaid diagram with the public service.
func (ge *Exporter[S]) MermaidPNG(ctx context.Context) ([]byte, error) {
	return NewMermaidRenderer().RenderPNG(ctx, ge.DrawMermaid())
}

// SaveMermaidPNG renders the graph and writes the image to path.
func (ge *Exporter[S]) SaveMermaidPNG(ctx context.Context, path string) error {
	return ge.SaveMermaidPNGWith(ctx, NewMermaidRenderer(), path)
}

// SaveMermaidPNGWith is SaveMermaidPNG with an explicit renderer.
func (ge *Exporter[S]) SaveMermaidPNGWith(ctx context.Context, renderer *MermaidRenderer, path string) error {
	png, err := renderer.RenderPNG(ctx, ge.DrawMermaid())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
