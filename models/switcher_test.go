package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langlab/config"
	"github.com/smallnest/langlab/graph"
	"github.com/smallnest/langlab/metrics"
)

// recordingLLM captures the call options of every request.
type recordingLLM struct {
	opts  []llms.CallOptions
	reply string
}

func (r *recordingLLM) GenerateContent(_ context.Context, _ []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var o llms.CallOptions
	for _, opt := range options {
		opt(&o)
	}
	r.opts = append(r.opts, o)
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		Content:        r.reply,
		GenerationInfo: map[string]any{"PromptTokens": 3, "completion_tokens": 2},
	}}}, nil
}

func (r *recordingLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, r, prompt, options...)
}

func TestListProviders(t *testing.T) {
	s := NewSwitcher()
	assert.Equal(t, []string{"ollama", "llamacpp", "openai", "anthropic", "mistral", "google"}, s.ListProviders())
}

func TestGetModel_UnsupportedProvider(t *testing.T) {
	_, err := NewSwitcher().GetModel(context.Background(), "bedrock", "x")
	require.ErrorIs(t, err, ErrUnsupportedProvider)
	assert.Equal(t,
		"unsupported provider: bedrock. Supported: [ollama llamacpp openai anthropic mistral google]",
		err.Error())
}

func TestGetModel_DefaultsAndOverrides(t *testing.T) {
	fake := &recordingLLM{reply: "ok"}
	s := NewSwitcher()
	var gotParams config.Params
	s.RegisterWithDefaults("fake", func(_ context.Context, name string, p config.Params) (llms.Model, error) {
		gotParams = p
		return fake, nil
	}, config.Params{Temperature: float(0.1), MaxTokens: 100})

	m, err := s.GetModel(context.Background(), "FAKE", "tiny", WithTemperature(0.7))
	require.NoError(t, err)
	assert.Equal(t, "fake", m.Info.Provider)
	assert.Equal(t, "tiny", m.Info.Name)
	assert.InDelta(t, 0.7, *gotParams.Temperature, 1e-9)
	assert.Equal(t, 100, gotParams.MaxTokens)

	out, err := m.Call(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = m.GenerateContent(context.Background(), nil, llms.WithMaxTokens(5))
	require.NoError(t, err)

	require.Len(t, fake.opts, 2)
	assert.InDelta(t, 0.7, fake.opts[0].Temperature, 1e-9)
	assert.Equal(t, 100, fake.opts[0].MaxTokens)
	assert.Equal(t, 5, fake.opts[1].MaxTokens, "per-call options win over defaults")
	assert.Equal(t, map[string]any{"temperature": 0.7, "max_tokens": 100}, m.Info.Params())
	assert.Same(t, fake, m.Unwrap())
}

func TestModel_RecordsMetrics(t *testing.T) {
	fake := &recordingLLM{reply: "ok"}
	rec := metrics.New(metrics.DefaultConfig())
	m := Wrap(fake, Info{Provider: "fake", Name: "tiny"}, WithRecorder(rec), WithMaxTokens(7))

	_, err := m.Call(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, 7, fake.opts[0].MaxTokens)

	families, err := rec.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["langlab_llm_calls_total"])
	assert.True(t, names["langlab_llm_tokens_total"])
}

func TestModel_Traced(t *testing.T) {
	tracer := graph.NewTracer()
	m := Wrap(&recordingLLM{reply: "Paris"}, Info{Provider: "fake", Name: "tiny"}, WithTracer(tracer))

	ctx := context.Background()
	parent := tracer.StartSpan(ctx, graph.TraceEventNodeStart, "ask")
	_, err := m.Call(graph.ContextWithSpan(ctx, parent), "What is the capital of France?")
	require.NoError(t, err)
	tracer.EndSpan(ctx, parent, nil, nil)

	spans := tracer.Spans()
	require.Len(t, spans, 2)
	call := spans[1]
	assert.Equal(t, graph.TraceEventLLMEnd, call.Event)
	assert.Equal(t, parent.ID, call.ParentID)
	assert.Equal(t, "tiny", call.NodeName)
	assert.Equal(t, "fake", call.Metadata["provider"])
	assert.Equal(t, "What is the capital of France?", call.Metadata["input"])
	assert.Equal(t, "Paris", call.Metadata["output"])
	assert.Equal(t, 3, call.Metadata["prompt_tokens"])
	assert.Equal(t, 2, call.Metadata["completion_tokens"])
}

func TestLlamaCppProvider(t *testing.T) {
	t.Setenv("OPENAI_COMPAT_API_KEY", "")
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer not-needed", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hello from llama.cpp"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	m, err := NewSwitcher().GetModel(context.Background(), "llamacpp", "local-model", WithBaseURL(server.URL+"/v1"))
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/v1", m.Info.BaseURL)

	out, err := m.Call(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello from llama.cpp", out)
	assert.Equal(t, "local-model", body["model"])
	assert.EqualValues(t, 100, body["max_tokens"])
	assert.InDelta(t, 0.1, body["temperature"], 1e-6)
}

func TestFromPreset(t *testing.T) {
	t.Setenv("OPENAI_COMPAT_API_KEY", "")
	t.Setenv(config.EnvActive, "")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"preset ok"}}]}`))
	}))
	defer server.Close()

	m, err := NewSwitcher().Configured(context.Background(), config.Default(), WithBaseURL(server.URL+"/v1"))
	require.NoError(t, err)
	assert.Equal(t, "llamacpp_local", m.Info.Preset)
	assert.Equal(t, "llamacpp", m.Info.Provider)
	assert.Equal(t, "mistralai/Magistral-Small-2509-GGUF", m.Info.Name)

	out, err := m.Call(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "preset ok", out)
}

func TestOllamaProviderConstructs(t *testing.T) {
	m, err := NewSwitcher().GetModel(context.Background(), "Ollama", "llama3.2:1b", WithBaseURL("http://127.0.0.1:1"))
	require.NoError(t, err)
	require.NotNil(t, m.Info.Temperature)
	assert.InDelta(t, 0.1, *m.Info.Temperature, 1e-9)
}

func TestListOllamaModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"gpt-oss:20b","model":"gpt-oss:20b"}]}`))
	}))
	defer server.Close()

	s := NewSwitcher()
	s.OllamaBaseURL = server.URL
	names, err := s.ListOllamaModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-oss:20b"}, names)
}

func TestListCompatibleModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"object":"list","data":[{"id":"Magistral-Small"}]}`))
	}))
	defer server.Close()

	ids, err := NewSwitcher().ListCompatibleModels(context.Background(), server.URL+"/v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Magistral-Small"}, ids)
}
