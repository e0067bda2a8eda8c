package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langlab/store"
)

// Turn is one message of a conversation.
type Turn = store.Turn

// Session is the in-memory view of a conversation.
type Session struct {
	ID     string
	System string
	Turns  []Turn
}

// NewSession starts a session with a random ID.
func NewSession(system string) *Session {
	return &Session{ID: uuid.NewString(), System: system}
}

// Messages converts the session to model input, system prompt first. When
// window is positive only the last window turns are included.
func (s *Session) Messages(window int) []llms.MessageContent {
	turns := s.Turns
	if window > 0 && len(turns) > window {
		turns = turns[len(turns)-window:]
	}
	msgs := make([]llms.MessageContent, 0, len(turns)+1)
	if s.System != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, s.System))
	}
	for _, t := range turns {
		msgs = append(msgs, llms.TextParts(messageType(t.Role), t.Text))
	}
	return msgs
}

func messageType(role string) llms.ChatMessageType {
	switch role {
	case store.RoleSystem:
		return llms.ChatMessageTypeSystem
	case store.RoleAI:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// Stats summarises a conversation.
type Stats struct {
	Messages int
	Turns    int
}

// Stats counts human and AI messages; a turn is a question and its answer.
func (s *Session) Stats() Stats {
	n := 0
	for _, t := range s.Turns {
		if t.Role != store.RoleSystem {
			n++
		}
	}
	return Stats{Messages: n, Turns: n / 2}
}

// MayaSystemPrompt is the system prompt of the interactive assistant.
func MayaSystemPrompt(now time.Time) string {
	return fmt.Sprintf("Today's date and time is: %s. "+
		"Always use this value if the user asks for the current date or time. "+
		"You are a helpful AI assistant and youe name is Maya. "+
		"Answer the user's questions to the best of your ability. "+
		"Always refer to the conversation history for context. "+
		"Strictly provide answers to the user's questions without any additional information.",
		now.Format("2006-01-02 15:04:05"))
}

// AssistantSystemPrompt is the system prompt of the memory chat.
const AssistantSystemPrompt = "You are a helpful assistant. Answer all questions to the best of your ability."
