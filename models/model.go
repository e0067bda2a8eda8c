package models

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langlab/graph"
	"github.com/smallnest/langlab/metrics"
)

// Info describes how a Model was configured.
type Info struct {
	Preset      string
	Provider    string
	Name        string
	BaseURL     string
	Temperature *float64
	MaxTokens   int
}

// Params returns the generation parameters as a display map.
func (i Info) Params() map[string]any {
	out := map[string]any{}
	if i.Temperature != nil {
		out["temperature"] = *i.Temperature
	}
	if i.MaxTokens > 0 {
		out["max_tokens"] = i.MaxTokens
	}
	if i.BaseURL != "" {
		out["base_url"] = i.BaseURL
	}
	return out
}

// Model is an llms.Model carrying default call options and metadata.
type Model struct {
	Info Info

	llm      llms.Model
	defaults []llms.CallOption
	recorder *metrics.Recorder
	tracer   *graph.Tracer
}

var _ llms.Model = (*Model)(nil)

func newModel(llm llms.Model, info Info, st settings) *Model {
	m := &Model{Info: info, llm: llm, recorder: st.recorder, tracer: st.tracer}
	if info.Temperature != nil {
		m.defaults = append(m.defaults, llms.WithTemperature(*info.Temperature))
	}
	if info.MaxTokens > 0 {
		m.defaults = append(m.defaults, llms.WithMaxTokens(info.MaxTokens))
	}
	return m
}

// Wrap decorates an arbitrary llms.Model, mostly for tests and custom clients.
func Wrap(llm llms.Model, info Info, opts ...Option) *Model {
	var st settings
	for _, opt := range opts {
		opt(&st)
	}
	if st.params.Temperature != nil {
		info.Temperature = st.params.Temperature
	}
	if st.params.MaxTokens > 0 {
		info.MaxTokens = st.params.MaxTokens
	}
	return newModel(llm, info, st)
}

// Unwrap returns the provider client.
func (m *Model) Unwrap() llms.Model { return m.llm }

// GenerateContent calls the provider with the model defaults ahead of options.
func (m *Model) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := make([]llms.CallOption, 0, len(m.defaults)+len(options))
	opts = append(opts, m.defaults...)
	opts = append(opts, options...)

	span := m.tracer.StartSpan(ctx, graph.TraceEventLLMStart, m.Info.Name)
	if span != nil {
		span.Metadata["provider"] = m.Info.Provider
		span.Metadata["model"] = m.Info.Name
		span.Metadata["input"] = lastText(messages)
	}

	start := time.Now()
	resp, err := m.llm.GenerateContent(ctx, messages, opts...)
	m.recorder.RecordLLMCall(m.Info.Provider, m.Info.Name, time.Since(start), err)
	if err == nil && resp != nil && len(resp.Choices) > 0 {
		info := resp.Choices[0].GenerationInfo
		promptTokens := intFromInfo(info, "prompt_tokens", "PromptTokens", "input_tokens", "InputTokens")
		completionTokens := intFromInfo(info, "completion_tokens", "CompletionTokens", "output_tokens", "OutputTokens")
		m.recorder.RecordLLMTokens(m.Info.Name, "prompt", promptTokens)
		m.recorder.RecordLLMTokens(m.Info.Name, "completion", completionTokens)
		if span != nil {
			span.Metadata["output"] = resp.Choices[0].Content
			span.Metadata["prompt_tokens"] = promptTokens
			span.Metadata["completion_tokens"] = completionTokens
		}
	}
	m.tracer.EndSpan(ctx, span, nil, err)
	return resp, err
}

// lastText returns the text of the last message, which is the prompt of a
// single turn call.
func lastText(messages []llms.MessageContent) string {
	if len(messages) == 0 {
		return ""
	}
	var out string
	for _, part := range messages[len(messages)-1].Parts {
		if tc, ok := part.(llms.TextContent); ok {
			out += tc.Text
		}
	}
	return out
}

// Call generates a completion for a single prompt.
func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func intFromInfo(info map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return v
		case int32:
			return int(v)
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
