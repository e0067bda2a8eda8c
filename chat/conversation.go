package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langlab/chains"
	"github.com/smallnest/langlab/log"
	"github.com/smallnest/langlab/store"
)

// ErrEmptyInput is returned by Send for blank input.
var ErrEmptyInput = errors.New("no input provided")

// IsExit reports whether text asks to end the chat.
func IsExit(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "exit", "quit":
		return true
	}
	return false
}

// Conversation sends a growing history to a model.
type Conversation struct {
	model    llms.Model
	session  *Session
	history  store.HistoryStore
	window   int
	callOpts []llms.CallOption
	now      func() time.Time
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithSystem sets the system prompt.
func WithSystem(prompt string) Option {
	return func(c *Conversation) { c.session.System = prompt }
}

// WithStore persists turns.
func WithStore(s store.HistoryStore) Option {
	return func(c *Conversation) { c.history = s }
}

// WithSessionID replaces the generated session ID.
func WithSessionID(id string) Option {
	return func(c *Conversation) {
		if id != "" {
			c.session.ID = id
		}
	}
}

// WithWindow limits how many of the latest turns are sent to the model.
// The full history is still kept and stored.
func WithWindow(n int) Option {
	return func(c *Conversation) { c.window = n }
}

// WithCallOptions passes options to every model call.
func WithCallOptions(opts ...llms.CallOption) Option {
	return func(c *Conversation) { c.callOpts = append(c.callOpts, opts...) }
}

// New creates a conversation with a fresh session.
func New(model llms.Model, opts ...Option) *Conversation {
	c := &Conversation{model: model, session: NewSession(""), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the underlying session.
func (c *Conversation) Session() *Session { return c.session }

// History returns a copy of the turns so far.
func (c *Conversation) History() []Turn { return slices.Clone(c.session.Turns) }

// Stats summarises the conversation.
func (c *Conversation) Stats() Stats { return c.session.Stats() }

// Resume loads the stored turns of the session.
func (c *Conversation) Resume(ctx context.Context) error {
	if c.history == nil {
		return nil
	}
	ids, err := c.history.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if !slices.Contains(ids, c.session.ID) {
		return fmt.Errorf("%w: %s", store.ErrSessionNotFound, c.session.ID)
	}
	turns, err := c.history.Load(ctx, c.session.ID)
	if err != nil {
		return err
	}
	c.session.Turns = turns
	log.Debug("resumed session %s with %d turns", c.session.ID, len(turns))
	return nil
}

// Send adds text as a human turn, asks the model and records its answer.
// A failed model call leaves the human turn in the history.
func (c *Conversation) Send(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}
	human := Turn{Role: store.RoleHuman, Text: text, At: c.now()}
	c.session.Turns = append(c.session.Turns, human)
	if err := c.persist(ctx, human); err != nil {
		return "", err
	}

	answer, err := chains.Generate(ctx, c.model, c.session.Messages(c.window), c.callOpts...)
	if err != nil {
		return "", err
	}
	ai := Turn{Role: store.RoleAI, Text: answer, At: c.now()}
	c.session.Turns = append(c.session.Turns, ai)
	if err := c.persist(ctx, ai); err != nil {
		return "", err
	}
	return answer, nil
}

func (c *Conversation) persist(ctx context.Context, t Turn) error {
	if c.history == nil {
		return nil
	}
	if err := c.history.Append(ctx, c.session.ID, t); err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}
