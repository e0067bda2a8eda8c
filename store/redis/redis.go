package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/langlab/store"
)

// Store implements store.HistoryStore with one Redis list per session.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ store.HistoryStore = (*Store)(nil)

// Options configuration for Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "langlab:"
	TTL      time.Duration // Expiration of idle sessions, default 0 (no expiration)
}

// New creates a Redis history store.
func New(opts Options) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewWithClient(client, opts.Prefix, opts.TTL)
}

// NewWithClient creates a store on an existing client.
func NewWithClient(client *redis.Client, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "langlab:"
	}
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) historyKey(sessionID string) string {
	return fmt.Sprintf("%shistory:%s", s.prefix, sessionID)
}

func (s *Store) sessionsKey() string {
	return s.prefix + "sessions"
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Append pushes turns to the session list.
func (s *Store) Append(ctx context.Context, sessionID string, turns ...store.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]any, 0, len(turns))
	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal turn: %w", err)
		}
		values = append(values, data)
	}

	key := s.historyKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.SAdd(ctx, s.sessionsKey(), sessionID)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append history to redis: %w", err)
	}
	return nil
}

// Load reads the whole session list.
func (s *Store) Load(ctx context.Context, sessionID string) ([]store.Turn, error) {
	raw, err := s.client.LRange(ctx, s.historyKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history from redis: %w", err)
	}
	turns := make([]store.Turn, 0, len(raw))
	for _, r := range raw {
		var t store.Turn
		if err := json.Unmarshal([]byte(r), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// Clear deletes the session list and its index entry.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.historyKey(sessionID))
	pipe.SRem(ctx, s.sessionsKey(), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Sessions lists indexed sessions whose history has not expired.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.sessionsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	live := ids[:0]
	for _, id := range ids {
		n, err := s.client.Exists(ctx, s.historyKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check session %s: %w", id, err)
		}
		if n > 0 {
			live = append(live, id)
		}
	}
	sort.Strings(live)
	return live, nil
}
