// Package store persists chat history.
//
// A HistoryStore keeps the ordered turns of each conversation session. The
// sub-packages provide backends:
//   - memory: process local, for tests and one-off runs
//   - redis: one list per session
//   - postgres: a history table accessed through pgx
//   - sqlite: the same table in a local file
//
// Every backend preserves the order in which turns were appended and returns
// an empty history for unknown sessions.
package store
