package chains

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

var (
	// ErrMissingVariable is returned when a template variable has no value.
	ErrMissingVariable = errors.New("missing template variable")
	// ErrInvalidPlaceholder is returned when a placeholder value is not a message list.
	ErrInvalidPlaceholder = errors.New("invalid placeholder value")
	// ErrUnknownRole is returned for chat template roles other than system, human/user and ai/assistant.
	ErrUnknownRole = errors.New("unknown message role")
)

// Formatter renders template values into chat messages.
type Formatter interface {
	FormatMessages(values map[string]any) ([]llms.MessageContent, error)
}

var variablePattern = regexp.MustCompile(`\{\{|\}\}|\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Variables returns the {name} placeholders of an f-string template in order
// of first appearance. Doubled braces are literals.
func Variables(template string) []string {
	var vars []string
	seen := make(map[string]bool)
	for _, m := range variablePattern.FindAllStringSubmatch(template, -1) {
		name := m[1]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		vars = append(vars, name)
	}
	return vars
}

// PromptTemplate is a single f-string prompt ("Tell me a joke about {topic}").
type PromptTemplate struct {
	tmpl prompts.PromptTemplate
}

// NewPrompt creates a prompt template and infers its variables.
func NewPrompt(template string) PromptTemplate {
	return PromptTemplate{tmpl: prompts.PromptTemplate{
		Template:       template,
		InputVariables: Variables(template),
		TemplateFormat: prompts.TemplateFormatFString,
	}}
}

// Template returns the raw template text.
func (p PromptTemplate) Template() string { return p.tmpl.Template }

// InputVariables returns the variables the template expects.
func (p PromptTemplate) InputVariables() []string { return p.tmpl.InputVariables }

// Partial returns a copy of p with some variables bound.
func (p PromptTemplate) Partial(values map[string]any) PromptTemplate {
	partial := make(map[string]any, len(p.tmpl.PartialVariables)+len(values))
	for k, v := range p.tmpl.PartialVariables {
		partial[k] = v
	}
	for k, v := range values {
		partial[k] = v
	}
	p.tmpl.PartialVariables = partial
	return p
}

// Format renders the template.
func (p PromptTemplate) Format(values map[string]any) (string, error) {
	for _, v := range p.tmpl.InputVariables {
		if _, ok := values[v]; ok {
			continue
		}
		if _, ok := p.tmpl.PartialVariables[v]; ok {
			continue
		}
		return "", fmt.Errorf("%w: %s", ErrMissingVariable, v)
	}
	return p.tmpl.Format(values)
}

// FormatMessages renders the template as a single human message.
func (p PromptTemplate) FormatMessages(values map[string]any) ([]llms.MessageContent, error) {
	text, err := p.Format(values)
	if err != nil {
		return nil, err
	}
	return []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, text)}, nil
}

// Message is one entry of a ChatTemplate: a role with a template, or a
// placeholder for a list of messages.
type Message struct {
	Role        llms.ChatMessageType
	Prompt      PromptTemplate
	Placeholder string
}

// System is a system message template.
func System(template string) Message {
	return Message{Role: llms.ChatMessageTypeSystem, Prompt: NewPrompt(template)}
}

// Human is a human message template.
func Human(template string) Message {
	return Message{Role: llms.ChatMessageTypeHuman, Prompt: NewPrompt(template)}
}

// AI is an assistant message template.
func AI(template string) Message {
	return Message{Role: llms.ChatMessageTypeAI, Prompt: NewPrompt(template)}
}

// Placeholder inserts the message history stored under name.
func Placeholder(name string) Message {
	return Message{Placeholder: name}
}

// RoleMessage builds a message from a role name as used in chat prompt
// tuples: system, human or user, ai or assistant.
func RoleMessage(role, template string) (Message, error) {
	switch strings.ToLower(role) {
	case "system":
		return System(template), nil
	case "human", "user":
		return Human(template), nil
	case "ai", "assistant":
		return AI(template), nil
	case "placeholder":
		return Placeholder(template), nil
	}
	return Message{}, fmt.Errorf("%w: %s", ErrUnknownRole, role)
}

// ChatTemplate is an ordered list of message templates.
type ChatTemplate struct {
	Messages []Message
}

// NewChatTemplate creates a chat template.
func NewChatTemplate(messages ...Message) ChatTemplate {
	return ChatTemplate{Messages: messages}
}

// FromPairs builds a chat template from (role, template) pairs.
func FromPairs(pairs ...[2]string) (ChatTemplate, error) {
	msgs := make([]Message, 0, len(pairs))
	for _, p := range pairs {
		m, err := RoleMessage(p[0], p[1])
		if err != nil {
			return ChatTemplate{}, err
		}
		msgs = append(msgs, m)
	}
	return ChatTemplate{Messages: msgs}, nil
}

// InputVariables returns the variables of every message, placeholders included.
func (c ChatTemplate) InputVariables() []string {
	var vars []string
	seen := make(map[string]bool)
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			vars = append(vars, v)
		}
	}
	for _, m := range c.Messages {
		if m.Placeholder != "" {
			add(m.Placeholder)
			continue
		}
		for _, v := range m.Prompt.InputVariables() {
			add(v)
		}
	}
	return vars
}

// FormatMessages renders every message in order.
func (c ChatTemplate) FormatMessages(values map[string]any) ([]llms.MessageContent, error) {
	out := make([]llms.MessageContent, 0, len(c.Messages))
	for _, m := range c.Messages {
		if m.Placeholder != "" {
			history, err := placeholderMessages(m.Placeholder, values[m.Placeholder])
			if err != nil {
				return nil, err
			}
			out = append(out, history...)
			continue
		}
		text, err := m.Prompt.Format(values)
		if err != nil {
			return nil, err
		}
		out = append(out, llms.TextParts(m.Role, text))
	}
	return out, nil
}

func placeholderMessages(name string, v any) ([]llms.MessageContent, error) {
	switch h := v.(type) {
	case nil:
		return nil, nil
	case []llms.MessageContent:
		return h, nil
	case []llms.ChatMessage:
		out := make([]llms.MessageContent, 0, len(h))
		for _, m := range h {
			out = append(out, llms.TextParts(m.GetType(), m.GetContent()))
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s is %T", ErrInvalidPlaceholder, name, v)
}

// FewShot formats examples with an example prompt between an optional prefix
// and a suffix. Empty pieces are skipped and the rest joined by Separator.
type FewShot struct {
	Examples      []map[string]string
	ExamplePrompt PromptTemplate
	Prefix        string
	Suffix        string
	Separator     string
}

// NewFewShot creates a few-shot prompt with a blank line separator.
func NewFewShot(examples []map[string]string, examplePrompt PromptTemplate, prefix, suffix string) *FewShot {
	return &FewShot{
		Examples:      examples,
		ExamplePrompt: examplePrompt,
		Prefix:        prefix,
		Suffix:        suffix,
		Separator:     "\n\n",
	}
}

// Format renders the prompt. Examples are rendered on their own so braces in
// example text are never treated as variables.
func (f *FewShot) Format(values map[string]any) (string, error) {
	pieces := make([]string, 0, len(f.Examples)+2)

	if f.Prefix != "" {
		prefix, err := NewPrompt(f.Prefix).Format(values)
		if err != nil {
			return "", err
		}
		pieces = append(pieces, prefix)
	}

	for _, ex := range f.Examples {
		vals := make(map[string]any, len(ex))
		for k, v := range ex {
			vals[k] = v
		}
		s, err := f.ExamplePrompt.Format(vals)
		if err != nil {
			return "", fmt.Errorf("example: %w", err)
		}
		pieces = append(pieces, s)
	}

	if f.Suffix != "" {
		suffix, err := NewPrompt(f.Suffix).Format(values)
		if err != nil {
			return "", err
		}
		pieces = append(pieces, suffix)
	}
	return strings.Join(pieces, f.Separator), nil
}

// FormatMessages renders the prompt as a single human message.
func (f *FewShot) FormatMessages(values map[string]any) ([]llms.MessageContent, error) {
	text, err := f.Format(values)
	if err != nil {
		return nil, err
	}
	return []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, text)}, nil
}
