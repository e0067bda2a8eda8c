package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/langlab/config"
	"github.com/smallnest/langlab/models"
	"github.com/smallnest/langlab/store"
)

func TestPrintResponse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintResponse(&buf, "# Title\n\nsome **bold** text", false))
	assert.Equal(t, "# Title\n\nsome **bold** text\n", buf.String())

	buf.Reset()
	require.NoError(t, PrintResponse(&buf, "# Title\n\nsome **bold** text", true))
	assert.Contains(t, buf.String(), "Title")
	assert.Contains(t, buf.String(), "bold")
	assert.NotContains(t, buf.String(), "**bold**")
}

func TestModelInfo(t *testing.T) {
	temp := 0.1
	var buf bytes.Buffer
	ModelInfo(&buf, models.Info{
		Preset:      "llamacpp_local",
		Provider:    "llamacpp",
		Name:        "mistralai/Magistral-Small-2509-GGUF",
		BaseURL:     "http://localhost:8080/v1",
		Temperature: &temp,
		MaxTokens:   100,
	})
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, strings.Repeat("=", 60)+"\n"))
	assert.Contains(t, out, "MODEL CONFIGURATION")
	assert.Contains(t, out, "Provider: llamacpp")
	assert.Contains(t, out, "Base URL: http://localhost:8080/v1")
	assert.Contains(t, out, "Temperature: 0.1")
	assert.Contains(t, out, "Max Tokens: 100")
}

func TestPresetTable(t *testing.T) {
	presets := config.Default()
	var buf bytes.Buffer
	PresetTable(&buf, presets, "ollama_llama32")

	var active []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "→ ACTIVE") {
			active = append(active, line)
		}
	}
	require.Len(t, active, 1)
	assert.True(t, strings.HasPrefix(active[0], "ollama_llama32"))
	assert.Contains(t, active[0], "llama3.2:1b")
	assert.Contains(t, buf.String(), "google_gemini_flash")
}

func TestTranscriptHTML(t *testing.T) {
	page := TranscriptHTML([]store.Turn{
		{Role: store.RoleHuman, Text: "Hi <script>alert(1)</script>"},
		{Role: store.RoleAI, Text: "Hello **there**"},
	})
	assert.NotContains(t, page, "<script>")
	assert.Contains(t, page, "<strong>there</strong>")
	assert.Contains(t, page, "<h3>1. User</h3>")
	assert.Contains(t, page, "<h3>2. AI</h3>")
	assert.Contains(t, page, "Total messages: 2")
}
