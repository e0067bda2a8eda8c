// Package openaicompat adapts any OpenAI compatible chat completion endpoint
// (llama.cpp server, vLLM, LM Studio) to langchaingo's llms.Model.
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
)

// ErrEmptyResponse is returned when the server answers without choices.
var ErrEmptyResponse = errors.New("no response")

// LLM is a chat model served over the OpenAI wire format.
type LLM struct {
	client           *openai.Client
	model            string
	baseURL          string
	CallbacksHandler callbacks.Handler
}

var _ llms.Model = (*LLM)(nil)

// New returns an LLM for the endpoint described by opts.
//
//	llm, err := openaicompat.New(
//		openaicompat.WithBaseURL("http://localhost:8080/v1"),
//		openaicompat.WithModel("local-model"),
//	)
func New(opts ...Option) (*LLM, error) {
	options := &options{
		apiKey:  getEnvOrDefault("OPENAI_COMPAT_API_KEY", DefaultAPIKey),
		baseURL: getEnvOrDefault("OPENAI_COMPAT_BASE_URL", DefaultBaseURL),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.baseURL == "" {
		return nil, errors.New("base url not set")
	}

	cfg := openai.DefaultConfig(options.apiKey)
	cfg.BaseURL = strings.TrimSuffix(options.baseURL, "/")
	if options.httpClient != nil {
		cfg.HTTPClient = options.httpClient
	}

	return &LLM{
		client:           openai.NewClientWithConfig(cfg),
		model:            options.model,
		baseURL:          cfg.BaseURL,
		CallbacksHandler: options.callbacksHandler,
	}, nil
}

// BaseURL returns the endpoint root the LLM talks to.
func (o *LLM) BaseURL() string { return o.baseURL }

// Call generates a response from the LLM for the given prompt.
func (o *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentStart(ctx, messages)
	}

	opts := &llms.CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	req := openai.ChatCompletionRequest{
		Model:       o.modelFor(*opts),
		Messages:    toChatMessages(messages),
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
		Stop:        opts.StopWords,
		Tools:       toTools(opts.Tools),
	}

	result, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		o.handleError(ctx, err)
		return nil, err
	}
	if len(result.Choices) == 0 {
		o.handleError(ctx, ErrEmptyResponse)
		return nil, ErrEmptyResponse
	}

	resp := &llms.ContentResponse{Choices: make([]*llms.ContentChoice, 0, len(result.Choices))}
	for _, c := range result.Choices {
		choice := &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				"prompt_tokens":     result.Usage.PromptTokens,
				"completion_tokens": result.Usage.CompletionTokens,
				"total_tokens":      result.Usage.TotalTokens,
			},
		}
		for _, tc := range c.Message.ToolCalls {
			choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
				ID:   tc.ID,
				Type: string(tc.Type),
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		resp.Choices = append(resp.Choices, choice)
	}

	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentEnd(ctx, resp)
	}
	return resp, nil
}

// ListModels returns the model ids served by the endpoint.
func (o *LLM) ListModels(ctx context.Context) ([]string, error) {
	list, err := o.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (o *LLM) handleError(ctx context.Context, err error) {
	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMError(ctx, err)
	}
}

func (o *LLM) modelFor(opts llms.CallOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return o.model
}

func toRole(t llms.ChatMessageType) string {
	switch t {
	case llms.ChatMessageTypeSystem:
		return openai.ChatMessageRoleSystem
	case llms.ChatMessageTypeAI:
		return openai.ChatMessageRoleAssistant
	case llms.ChatMessageTypeTool:
		return openai.ChatMessageRoleTool
	default:
		return openai.ChatMessageRoleUser
	}
}

// toChatMessages flattens langchaingo messages. Every tool response becomes
// its own "tool" message since the wire format carries one result per message.
func toChatMessages(messages []llms.MessageContent) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		chat := openai.ChatCompletionMessage{Role: toRole(msg.Role)}
		var text strings.Builder
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				text.WriteString(p.Text)
			case llms.ToolCall:
				if p.FunctionCall == nil {
					continue
				}
				chat.ToolCalls = append(chat.ToolCalls, openai.ToolCall{
					ID:   p.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      p.FunctionCall.Name,
						Arguments: p.FunctionCall.Arguments,
					},
				})
			case llms.ToolCallResponse:
				out = append(out, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    p.Content,
					Name:       p.Name,
					ToolCallID: p.ToolCallID,
				})
			}
		}
		if text.Len() == 0 && len(chat.ToolCalls) == 0 {
			continue
		}
		chat.Content = text.String()
		out = append(out, chat)
	}
	return out
}

func toTools(tools []llms.Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		if t.Function == nil {
			continue
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		})
	}
	return out
}
