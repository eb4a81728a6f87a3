package repo

import (
	"testing"
	"time"
)

func TestParseSkipsPrivateAndIncomplete(t *testing.T) {
	cases := []struct {
		name string
		data map[string]any
	}{
		{"private", map[string]any{"private": true, "name": "x", "html_url": "https://example.com/x"}},
		{"no name", map[string]any{"html_url": "https://example.com/x"}},
		{"no url", map[string]any{"name": "x"}},
		{"blank name", map[string]any{"name": "   ", "html_url": "https://example.com/x"}},
	}
	for _, tc := range cases {
		if _, ok := Parse(tc.data); ok {
			t.Errorf("%s: expected rejection", tc.name)
		}
	}
}

func TestParseFieldsAndTypeTolerance(t *testing.T) {
	data := map[string]any{
		"name":             " demo ",
		"html_url":         "https://example.com/demo",
		"description":      " a thing ",
		"language":         "Go",
		"stargazers_count": float64(42),
		"pushed_at":        "2026-01-02T03:04:05Z",
		"updated_at":       "2020-01-01T00:00:00Z",
		"fork":             true,
		"archived":         "yes", // wrong type, must not archive
	}
	r, ok := Parse(data)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if r.Name != "demo" || r.Description != "a thing" {
		t.Errorf("fields not trimmed: %+v", r)
	}
	if r.Stars != 42 {
		t.Errorf("stars = %d, want 42", r.Stars)
	}
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if !r.UpdatedAt.Equal(want) {
		t.Errorf("pushed_at should win: got %v", r.UpdatedAt)
	}
	if !r.Fork || r.Archived {
		t.Errorf("flags wrong: fork=%t archived=%t", r.Fork, r.Archived)
	}
}

func TestParseFallsBackToUpdatedAt(t *testing.T) {
	data := map[string]any{
		"name":       "demo",
		"html_url":   "https://example.com/demo",
		"updated_at": "2025-06-01T00:00:00Z",
	}
	r, ok := Parse(data)
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if r.UpdatedAt.IsZero() {
		t.Error("updated_at should be used when pushed_at is absent")
	}
}

func TestSortMostRecentFirst(t *testing.T) {
	at := func(s string) time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t.Fatalf("bad time %q: %v", s, err)
		}
		return ts
	}
	repos := []Repository{
		{Name: "old", UpdatedAt: at("2020-01-01T00:00:00Z")},
		{Name: "Newer", UpdatedAt: at("2026-01-01T00:00:00Z")},
		{Name: "apple", UpdatedAt: at("2026-01-01T00:00:00Z")},
	}
	Sort(repos)
	if repos[0].Name != "apple" || repos[1].Name != "Newer" || repos[2].Name != "old" {
		t.Errorf("unexpected order: %s, %s, %s", repos[0].Name, repos[1].Name, repos[2].Name)
	}
}

func TestSplit(t *testing.T) {
	repos := []Repository{
		{Name: "a"},
		{Name: "b", Archived: true},
		{Name: "c"},
	}
	active, archived := Split(repos)
	if len(active) != 2 || len(archived) != 1 {
		t.Fatalf("split sizes: active=%d archived=%d", len(active), len(archived))
	}
	if active[0].Name != "a" || active[1].Name != "c" || archived[0].Name != "b" {
		t.Error("split changed ordering")
	}
}

func TestDisplayPlaceholders(t *testing.T) {
	var r Repository
	if r.DisplayLanguage() != "Unknown" {
		t.Errorf("language placeholder = %q", r.DisplayLanguage())
	}
	if r.DisplayDescription() != "No description provided." {
		t.Errorf("description placeholder = %q", r.DisplayDescription())
	}
	r.Language = "Go"
	if r.DisplayLanguage() != "Go" {
		t.Errorf("language = %q", r.DisplayLanguage())
	}
}
