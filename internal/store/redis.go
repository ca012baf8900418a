// Package store provides session storage backends for SupportFlow.
//
// This file implements the Redis-backed session store. Sessions are kept
// under a per-conversation key with an idle TTL, so abandoned chats clean
// themselves up.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/VertexInfotech/SupportFlow/internal/models"
)

// sessionKeyPrefix namespaces conversation keys in Redis.
const sessionKeyPrefix = "supportflow:session:"

// RedisStore persists sessions in Redis with an idle expiry.
type RedisStore struct {
	client *redis.Client
	opts   Opts
}

// NewRedisStore creates a Redis store from a redis:// URL.
func NewRedisStore(opts ...Option) (*RedisStore, error) {
	cfg := Opts{TTL: DefaultSessionTTL}
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewRedisStore invoked", "URL_set", cfg.DSN != "", "ttl", cfg.TTL)

	if cfg.DSN == "" {
		slog.Error("RedisStore URL not set")
		return nil, fmt.Errorf("redis URL not set")
	}

	redisOpts, err := redis.ParseURL(cfg.DSN)
	if err != nil {
		slog.Error("failed to parse Redis URL", "error", err)
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(redisOpts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		slog.Error("Redis ping failed", "error", err)
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	slog.Info("Redis session store ready", "ttl", cfg.TTL)
	return &RedisStore{client: client, opts: cfg}, nil
}

// GetSession retrieves the session for a conversation, or nil if none.
func (s *RedisStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}

// SaveSession stores the session and refreshes its idle TTL.
func (s *RedisStore) SaveSession(ctx context.Context, id string, sess models.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+id, raw, s.opts.TTL).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// DeleteSession removes a conversation's session.
func (s *RedisStore) DeleteSession(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
