package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ai-translator/web/internal/db"
)

func newSQLiteStore(t *testing.T, ttl time.Duration) *SQLiteStore {
	t.Helper()
	database, err := db.NewSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	s := NewSQLiteStore(database.DB(), ttl)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t, 0)

	if _, ok, err := s.Get(ctx, "s1", KeyResult); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "s1", KeyResult, "hola"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "s1", KeyResult, "bonjour"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	v, ok, err := s.Get(ctx, "s1", KeyResult)
	if err != nil || !ok || v != "bonjour" {
		t.Errorf("Get = %q, %v, %v", v, ok, err)
	}

	if err := s.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "s1", KeyResult); ok {
		t.Error("value should be gone after Delete")
	}
}

func TestSQLiteStoreReap(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t, time.Hour)

	now := time.Now()
	s.now = func() time.Time { return now.Add(-2 * time.Hour) }
	s.Set(ctx, "old", KeySourceText, "x")
	s.now = func() time.Time { return now }
	s.Set(ctx, "fresh", KeySourceText, "y")

	n, err := s.Reap(ctx)
	if err != nil {
		t.Fatalf("Reap: %v", err)
	}
	if n != 1 {
		t.Errorf("Reap removed %d rows, want 1", n)
	}
	if _, ok, _ := s.Get(ctx, "fresh", KeySourceText); !ok {
		t.Error("fresh session should survive")
	}
}

func TestSQLiteStoreTouchPreventsReap(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t, time.Hour)

	now := time.Now()
	s.now = func() time.Time { return now.Add(-2 * time.Hour) }
	if err := New("s1", s).MarkIntroSeen(ctx); err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return now.Add(-10 * time.Minute) }
	if err := s.Touch(ctx, "s1"); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	s.now = func() time.Time { return now }
	if n, err := s.Reap(ctx); err != nil || n != 0 {
		t.Fatalf("Reap = %d, %v; want 0", n, err)
	}
	seen, err := New("s1", s).HasSeenIntro(ctx)
	if err != nil || !seen {
		t.Errorf("HasSeenIntro = %v, %v; want true", seen, err)
	}
}
