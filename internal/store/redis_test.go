package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/VertexInfotech/SupportFlow/internal/models"
)

func newTestRedisStore(t *testing.T, opts ...Option) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	opts = append([]Option{WithRedisURL("redis://" + mr.Addr())}, opts...)
	s, err := NewRedisStore(opts...)
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStoreCRUD(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	got, err := s.GetSession(ctx, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing session, got %+v", got)
	}

	sess := models.Session{
		Language:     models.LanguageMarathi,
		CurrentState: "collectDateTime",
		BookingItem:  "AMC भेट",
	}
	if err := s.SaveSession(ctx, "c1", sess); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err = s.GetSession(ctx, "c1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.CurrentState != "collectDateTime" || got.BookingItem != "AMC भेट" {
		t.Errorf("unexpected session: %+v", got)
	}

	if err := s.DeleteSession(ctx, "c1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got, _ = s.GetSession(ctx, "c1")
	if got != nil {
		t.Errorf("expected session deleted, got %+v", got)
	}
}

func TestRedisStoreSessionExpiry(t *testing.T) {
	s, mr := newTestRedisStore(t, WithTTL(time.Minute))
	ctx := context.Background()

	sess := models.Session{Language: models.LanguageEnglish, CurrentState: "mainMenu"}
	if err := s.SaveSession(ctx, "c1", sess); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if ttl := mr.TTL(sessionKeyPrefix + "c1"); ttl != time.Minute {
		t.Errorf("expected TTL of 1m, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	got, err := s.GetSession(ctx, "c1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected session expired, got %+v", got)
	}
}

func TestRedisStoreBadURL(t *testing.T) {
	if _, err := NewRedisStore(WithRedisURL("not-a-url")); err == nil {
		t.Fatal("expected error for malformed redis URL")
	}
}
