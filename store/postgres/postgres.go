package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallnest/langlab/store"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store implements store.HistoryStore on a PostgreSQL table.
type Store struct {
	pool      DBPool
	tableName string
	now       func() time.Time
}

var _ store.HistoryStore = (*Store)(nil)

// Options configuration for Postgres connection
type Options struct {
	ConnString string
	TableName  string // Default "chat_history"
}

// New connects to PostgreSQL and creates the history table if needed.
func New(ctx context.Context, opts Options) (*Store, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	s := NewWithPool(pool, opts.TableName)
	if err := s.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool creates a store with an existing pool
// Useful for testing with mocks
func NewWithPool(pool DBPool, tableName string) *Store {
	if tableName == "" {
		tableName = "chat_history"
	}
	return &Store{pool: pool, tableName: tableName, now: time.Now}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *Store) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_session_id ON %s (session_id, id);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *Store) Close() {
	s.pool.Close()
}

// Append inserts turns in one transaction.
func (s *Store) Append(ctx context.Context, sessionID string, turns ...store.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf("INSERT INTO %s (session_id, role, content, created_at) VALUES ($1, $2, $3, $4)", s.tableName)
	for _, t := range turns {
		at := t.At
		if at.IsZero() {
			at = s.now()
		}
		if _, err := tx.Exec(ctx, query, sessionID, t.Role, t.Text, at); err != nil {
			return fmt.Errorf("failed to append turn: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit history: %w", err)
	}
	return nil
}

// Load returns a session's turns in insertion order.
func (s *Store) Load(ctx context.Context, sessionID string) ([]store.Turn, error) {
	query := fmt.Sprintf("SELECT role, content, created_at FROM %s WHERE session_id = $1 ORDER BY id ASC", s.tableName)
	rows, err := s.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	turns := []store.Turn{}
	for rows.Next() {
		var t store.Turn
		if err := rows.Scan(&t.Role, &t.Text, &t.At); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return turns, nil
}

// Clear deletes a session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE session_id = $1", s.tableName)
	if _, err := s.pool.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Sessions lists session IDs.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT session_id FROM %s ORDER BY session_id", s.tableName)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
