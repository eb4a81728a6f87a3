package storage

import (
	"path/filepath"
	"testing"
	"time"

	"repodeck/internal/repo"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReplaceAllRoundTrip(t *testing.T) {
	s := openTestStore(t)

	updated := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	repos := []repo.Repository{
		{Name: "alpha", HTMLURL: "https://example.com/alpha", Description: "cli tool",
			Language: "Rust", Stars: 3, UpdatedAt: updated},
		{Name: "beta", HTMLURL: "https://example.com/beta", Language: "Go", Archived: true, Fork: true},
	}
	if err := s.ReplaceAll("someone", repos); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := s.FetchAll("someone")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 repos, got %d", len(got))
	}
	if got[0].Name != "alpha" || got[1].Name != "beta" {
		t.Error("listing order not preserved")
	}
	if !got[0].UpdatedAt.Equal(updated) {
		t.Errorf("updated_at round trip: got %v", got[0].UpdatedAt)
	}
	if !got[1].Archived || !got[1].Fork {
		t.Error("flags lost in round trip")
	}
	if !got[1].UpdatedAt.IsZero() {
		t.Errorf("missing updated_at should stay zero, got %v", got[1].UpdatedAt)
	}
}

func TestReplaceAllOverwrites(t *testing.T) {
	s := openTestStore(t)

	first := []repo.Repository{{Name: "old", HTMLURL: "https://example.com/old"}}
	if err := s.ReplaceAll("someone", first); err != nil {
		t.Fatalf("replace: %v", err)
	}
	second := []repo.Repository{
		{Name: "new-a", HTMLURL: "https://example.com/a"},
		{Name: "new-b", HTMLURL: "https://example.com/b"},
	}
	if err := s.ReplaceAll("someone", second); err != nil {
		t.Fatalf("replace again: %v", err)
	}

	got, err := s.FetchAll("someone")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 || got[0].Name != "new-a" {
		t.Errorf("cache not replaced: %+v", got)
	}
}

func TestCacheIsPerUser(t *testing.T) {
	s := openTestStore(t)

	if err := s.ReplaceAll("a", []repo.Repository{{Name: "x", HTMLURL: "https://example.com/x"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := s.FetchAll("b")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("user b should have an empty cache, got %d", len(got))
	}
}

func TestLastFetched(t *testing.T) {
	s := openTestStore(t)

	if _, ok, err := s.LastFetched("someone"); err != nil || ok {
		t.Fatalf("expected no fetch record, ok=%t err=%v", ok, err)
	}

	before := time.Now().UTC().Add(-time.Second)
	if err := s.ReplaceAll("someone", nil); err != nil {
		t.Fatalf("replace: %v", err)
	}
	fetched, ok, err := s.LastFetched("someone")
	if err != nil || !ok {
		t.Fatalf("expected a fetch record, ok=%t err=%v", ok, err)
	}
	if fetched.Before(before) {
		t.Errorf("fetched_at %v should be recent", fetched)
	}
}
