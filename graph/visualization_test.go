package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passthrough(ctx context.Context, state map[string]any) (map[string]any, error) {
	return state, nil
}

func TestVisualization(t *testing.T) {
	g := NewStateGraph[map[string]any]()
	g.AddNode("A", "A", passthrough)
	g.AddNode("B", "B", passthrough)
	g.AddNode("C", "C", passthrough)

	g.SetEntryPoint("A")
	g.AddEdge("A", "B")
	g.AddConditionalEdge("B", func(ctx context.Context, state map[string]any) string { return "C" })
	g.AddEdge("C", END)

	_, err := g.Compile()
	require.NoError(t, err)

	exporter := NewExporter(g)

	mermaid := exporter.DrawMermaid()
	assert.True(t, strings.HasPrefix(mermaid, "flowchart TD\n"))
	assert.Contains(t, mermaid, "START --> A")
	assert.Contains(t, mermaid, "A --> B")
	assert.Contains(t, mermaid, "B -.-> B_condition((?))")
	assert.Contains(t, mermaid, "C --> END")

	mermaidLR := exporter.DrawMermaidWithOptions(MermaidOptions{Direction: "LR"})
	assert.Contains(t, mermaidLR, "flowchart LR")

	dot := exporter.DrawDOT()
	assert.Contains(t, dot, "A -> B;")
	assert.Contains(t, dot, "B -> B_condition [style=dashed, label=\"?\"]")

	ascii := exporter.DrawASCII()
	assert.Contains(t, ascii, "└── A")
	assert.Contains(t, ascii, "(?)")
}

func TestVisualization_PathMapLabels(t *testing.T) {
	g := NewStateGraph[map[string]any]()
	g.AddNode("check", "", passthrough)
	g.AddNode("fix", "", passthrough)
	g.SetEntryPoint("check")
	g.AddConditionalEdges("check", func(ctx context.Context, state map[string]any) string { return "ok" },
		map[string]string{"ok": END, "broken": "fix"})
	g.AddEdge("fix", "check")

	exporter := NewExporter(g)

	mermaid := exporter.DrawMermaid()
	assert.Contains(t, mermaid, "check -.->|broken| fix")
	assert.Contains(t, mermaid, "check -.->|ok| END")
	assert.Contains(t, mermaid, "END([\"END\"])")

	dot := exporter.DrawDOT()
	assert.Contains(t, dot, "check -> fix [style=dashed, label=\"broken\"];")

	ascii := exporter.DrawASCII()
	assert.Contains(t, ascii, "[broken] fix")
	assert.Contains(t, ascii, "check (cycle)")
	assert.Contains(t, ascii, "[ok] END")
}

func TestDrawASCII_NoEntryPoint(t *testing.T) {
	assert.Equal(t, "No entry point set\n", NewExporter(NewStateGraph[int]()).DrawASCII())
}

func TestMermaidRenderer(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "png", r.URL.Query().Get("type"))
		w.Header().Set("Content-Type", "image/png")
		w.Write(append(append([]byte{}, pngMagic...), 1, 2, 3))
	}))
	defer server.Close()

	g := NewStateGraph[map[string]any]()
	g.AddNode("only", "", passthrough)
	g.SetEntryPoint("only")
	g.AddEdge("only", END)

	renderer := &MermaidRenderer{BaseURL: server.URL}
	path := filepath.Join(t.TempDir(), "graph.png")
	require.NoError(t, NewExporter(g).SaveMermaidPNGWith(context.Background(), renderer, path))

	assert.True(t, strings.HasPrefix(gotPath, "/img/"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, data[:len(pngMagic)])
}

func TestMermaidRenderer_RejectsNonPNG(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer server.Close()

	_, err := (&MermaidRenderer{BaseURL: server.URL}).RenderPNG(context.Background(), "flowchart TD\n")
	assert.ErrorIs(t, err, ErrNotPNG)
}

func TestMermaidRenderer_Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad diagram", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := (&MermaidRenderer{BaseURL: server.URL}).RenderPNG(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
