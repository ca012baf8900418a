// Package store provides session storage backends for SupportFlow.
//
// Server-held conversations keep their Session here between turns. The
// in-memory store is the default; Redis, SQLite, and Postgres backends are
// selected by DSN at startup.
package store

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/VertexInfotech/SupportFlow/internal/models"
)

// DefaultSessionTTL is how long an idle conversation survives in backends
// that support expiry.
const DefaultSessionTTL = 24 * time.Hour

// Opts holds configuration for store backends.
type Opts struct {
	DSN string
	TTL time.Duration
}

// Option configures a store backend.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithRedisURL sets the Redis connection URL.
func WithRedisURL(url string) Option {
	return func(o *Opts) { o.DSN = url }
}

// WithTTL overrides the idle-session expiry for backends that support it.
func WithTTL(ttl time.Duration) Option {
	return func(o *Opts) { o.TTL = ttl }
}

// Store persists one Session per conversation ID.
type Store interface {
	// GetSession retrieves the session for a conversation, or nil if none.
	GetSession(ctx context.Context, id string) (*models.Session, error)

	// SaveSession stores the session for a conversation.
	SaveSession(ctx context.Context, id string, sess models.Session) error

	// DeleteSession removes a conversation's session.
	DeleteSession(ctx context.Context, id string) error

	// Close releases any underlying resources.
	Close() error
}

// DetectDSNType classifies a DSN as redis, postgres, or sqlite. File paths
// and anything unrecognized are treated as SQLite.
func DetectDSNType(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return "redis"
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		return "postgres"
	default:
		return "sqlite"
	}
}

// InMemoryStore keeps sessions in a mutex-guarded map. Suitable for a single
// process; sessions do not survive a restart.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewInMemoryStore creates an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	slog.Debug("creating in-memory session store")
	return &InMemoryStore{sessions: make(map[string]models.Session)}
}

// GetSession retrieves the session for a conversation, or nil if none.
func (s *InMemoryStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

// SaveSession stores the session for a conversation.
func (s *InMemoryStore) SaveSession(ctx context.Context, id string, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
	return nil
}

// DeleteSession removes a conversation's session.
func (s *InMemoryStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
