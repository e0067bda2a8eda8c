package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langlab/models"
)

// replyLLM answers every request with reply, or with a canned answer when the
// prompt contains one of the keys.
type replyLLM struct {
	reply   string
	answers map[string]string
}

func (m *replyLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	var text string
	for _, p := range messages[len(messages)-1].Parts {
		if tc, ok := p.(llms.TextContent); ok {
			text += tc.Text
		}
	}
	out := m.reply
	for key, answer := range m.answers {
		if strings.Contains(text, key) {
			out = answer
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: out}}}, nil
}

func (m *replyLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func run(t *testing.T, llm llms.Model, stdin string, args ...string) string {
	t.Helper()
	t.Setenv("ACTIVE_CONFIG", "")

	var out bytes.Buffer
	a := newApp(strings.NewReader(stdin), &out)
	a.newModel = func(context.Context) (llms.Model, models.Info, error) {
		return llm, models.Info{Provider: "fake", Name: "scripted"}, nil
	}
	root := newRootCmd(a)
	root.SetArgs(append([]string{"--plain", "--log-level", "none"}, args...))
	root.SetOut(&out)
	root.SetErr(&out)
	require.NoError(t, root.ExecuteContext(context.Background()))
	return out.String()
}

func TestModelsCommand(t *testing.T) {
	out := run(t, nil, "", "models")
	assert.Contains(t, out, "Supported providers: [ollama llamacpp openai anthropic mistral google]")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "→ ACTIVE") {
			assert.True(t, strings.HasPrefix(line, "llamacpp_local"), line)
		}
	}

	out = run(t, nil, "", "models", "--preset", "mistral_small")
	assert.Regexp(t, `(?m)^mistral_small .*→ ACTIVE$`, out)
}

func TestAskCommand(t *testing.T) {
	out := run(t, &replyLLM{reply: "Paris"}, "", "ask", "What", "is", "the", "capital", "of", "France?")
	assert.Contains(t, out, "MODEL CONFIGURATION")
	assert.Contains(t, out, "Provider: fake")
	assert.True(t, strings.HasSuffix(out, "Paris\n"))
}

func TestChainCommand(t *testing.T) {
	llm := &replyLLM{answers: map[string]string{
		"best name":             "RoboRide",
		"100 words description": "RoboRide builds cars.",
	}}
	out := run(t, llm, "", "chain", "sequential", "AI powered cars")
	assert.Contains(t, out, "Product: AI powered cars\nCompany Name:\nRoboRide\n\nDescription:\nRoboRide builds cars.\n")

	out = run(t, &replyLLM{reply: "81"}, "", "chain", "fewshot", "3 😂 4")
	assert.Contains(t, out, "Question: 3 😂 4\nAnswer:\n81\n")
}

func TestChatCommand(t *testing.T) {
	html := filepath.Join(t.TempDir(), "chat.html")
	out := run(t, &replyLLM{reply: "Hello Bob"}, "My name is Bob\n\nexit\n", "chat", "--html", html)

	assert.Contains(t, out, "AI: Hello Bob")
	assert.Contains(t, out, "No input provided. Please type your message or 'exit' to quit.")
	assert.Contains(t, out, "Exiting chat...")
	assert.Contains(t, out, "1. User: My name is Bob\n2. AI: Hello Bob\n")
	assert.Contains(t, out, "Total messages: 2\nConversation turns: 1\n")

	page, err := os.ReadFile(html)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Hello Bob")
}

func TestChatCommandSQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	run(t, &replyLLM{reply: "noted"}, "remember 42\nquit\n", "chat", "--store", "sqlite", "--sqlite-path", db, "--session", "s1")

	out := run(t, &replyLLM{reply: "42"}, "what number?\nquit\n", "chat", "--store", "sqlite", "--sqlite-path", db, "--session", "s1")
	assert.Contains(t, out, "1. User: remember 42\n2. AI: noted\n3. User: what number?\n4. AI: 42\n")
}

func TestGraphCommandTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spans.jsonl")
	run(t, nil, "", "--trace", path, "graph", "priority", "urgent help")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[len(lines)-1], `"event":"graph_end"`)
	assert.Contains(t, lines[len(lines)-1], `"name":"priority_workflow"`)
	assert.Contains(t, string(data), `"event":"node_end","name":"high_priority"`)
}

func TestGraphCommand(t *testing.T) {
	out := run(t, nil, "", "graph", "priority", "hello")
	assert.Contains(t, out, "Processing: 'hello'")
	assert.Contains(t, out, "Score: 5\nPath Taken: start -> low_priority -> validation -> final\n")

	out = run(t, nil, "", "graph", "demo", "--mermaid")
	assert.Contains(t, out, "first_node --> second_node")
	assert.Contains(t, out, "1. Starting the workflow.\n2. I reached Node 1.\n3. And now at Node 2.\n")
}

func TestAgentCommand(t *testing.T) {
	out := run(t, &replyLLM{reply: "6"}, "", "agent", "what is 2 + 4")
	assert.Contains(t, out, "Query: what is 2 + 4")
	assert.Contains(t, out, "FINAL ANSWER: 6")
}

func TestEvalCommand(t *testing.T) {
	out := run(t, nil, "", "eval", "--constant", "Paris")
	assert.Contains(t, out, "1. [PASS] What is the capital of France?")
	assert.Contains(t, out, "2. [FAIL] What is the capital of Switzerland?")
	assert.Contains(t, out, "demo_capitals_experiment: 1/2 passed (50.0%)")
}
