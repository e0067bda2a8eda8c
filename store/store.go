package store

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when resuming a session no store knows.
var ErrSessionNotFound = errors.New("session not found")

// Turn is one message of a conversation.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Roles used in turns.
const (
	RoleSystem = "system"
	RoleHuman  = "human"
	RoleAI     = "ai"
)

// HistoryStore keeps conversation turns per session.
type HistoryStore interface {
	// Append adds turns to the end of a session, creating it if needed.
	Append(ctx context.Context, sessionID string, turns ...Turn) error

	// Load returns the turns of a session in order. Unknown sessions are empty.
	Load(ctx context.Context, sessionID string) ([]Turn, error)

	// Clear removes a session.
	Clear(ctx context.Context, sessionID string) error

	// Sessions lists known session IDs in sorted order.
	Sessions(ctx context.Context) ([]string, error)
}
