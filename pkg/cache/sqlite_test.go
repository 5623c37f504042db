package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_SetGet(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k1", entry(`{"decision":"CRITICAL"}`, 0.95), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil, want entry")
	}
	if string(got.Payload) != `{"decision":"CRITICAL"}` || got.Confidence != 0.95 {
		t.Errorf("entry = %s/%v", got.Payload, got.Confidence)
	}
}

func TestSQLiteStore_MissReturnsNil(t *testing.T) {
	s := newTestSQLiteStore(t)

	got, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %v, want nil", got)
	}
}

func TestSQLiteStore_Upsert(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	s.Set(ctx, "k1", entry("old", 0.7), time.Minute)
	s.Set(ctx, "k1", entry("new", 0.9), time.Minute)

	got, _ := s.Get(ctx, "k1")
	if got == nil || string(got.Payload) != "new" || got.Confidence != 0.9 {
		t.Errorf("entry after upsert = %+v, want new/0.9", got)
	}

	stats, _ := s.Stats(ctx)
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want 1", stats.Entries)
	}
}

func TestSQLiteStore_ReadTimeExpiry(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	s.Set(ctx, "k1", entry("v", 0.9), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Error("expired entry served")
	}
}

func TestSQLiteStore_Prune(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	s.Set(ctx, "stale-1", entry("v", 0.9), 10*time.Millisecond)
	s.Set(ctx, "stale-2", entry("v", 0.9), 10*time.Millisecond)
	s.Set(ctx, "fresh", entry("v", 0.9), time.Minute)
	time.Sleep(30 * time.Millisecond)

	removed, err := s.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	got, _ := s.Get(ctx, "fresh")
	if got == nil {
		t.Error("fresh entry was pruned")
	}
}

func TestSQLiteStore_InvalidatePrefix(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	s.Set(ctx, "judgment:tenant-a:rs-1:h1", entry("v", 0.9), time.Minute)
	s.Set(ctx, "judgment:tenant-a:rs-2:h2", entry("v", 0.9), time.Minute)
	s.Set(ctx, "judgment:tenant-b:rs-1:h3", entry("v", 0.9), time.Minute)

	removed, err := s.InvalidatePrefix(ctx, "judgment:tenant-a:")
	if err != nil {
		t.Fatalf("InvalidatePrefix() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if got, _ := s.Get(ctx, "judgment:tenant-b:rs-1:h3"); got == nil {
		t.Error("other tenant's entry was removed")
	}
}

func TestSQLiteStore_InvalidatePrefixEscapesWildcards(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	s.Set(ctx, "judgment:a_b:rs:h1", entry("v", 0.9), time.Minute)
	s.Set(ctx, "judgment:aXb:rs:h2", entry("v", 0.9), time.Minute)

	// _ must match literally, not as a single-character wildcard.
	removed, err := s.InvalidatePrefix(ctx, "judgment:a_b:")
	if err != nil {
		t.Fatalf("InvalidatePrefix() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if got, _ := s.Get(ctx, "judgment:aXb:rs:h2"); got == nil {
		t.Error("wildcard matched an unrelated key")
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	first.Set(ctx, "k1", entry("persistent", 0.9), time.Minute)
	first.Close()

	second, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() reopen error = %v", err)
	}
	defer second.Close()

	got, _ := second.Get(ctx, "k1")
	if got == nil || string(got.Payload) != "persistent" {
		t.Errorf("entry after reopen = %+v, want persistent", got)
	}
}

func TestSQLiteStore_EmptyPathRejected(t *testing.T) {
	if _, err := NewSQLiteStore(""); err == nil {
		t.Error("NewSQLiteStore(\"\") did not fail")
	}
}
