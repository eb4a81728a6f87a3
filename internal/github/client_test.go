package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchPublicRepositories(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.String())
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `[
			{"name":"alpha","html_url":"https://example.com/alpha","language":"Rust","description":"cli tool","stargazers_count":3,"pushed_at":"2026-01-02T00:00:00Z"},
			{"name":"secret","html_url":"https://example.com/secret","private":true},
			{"name":"beta","html_url":"https://example.com/beta","language":"Go","pushed_at":"2026-02-01T00:00:00Z"}
		]`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithToken("tok"))
	repos, err := c.FetchPublicRepositories(context.Background(), "someone")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("expected 2 repositories, got %d", len(repos))
	}
	if repos[0].Name != "beta" || repos[1].Name != "alpha" {
		t.Errorf("expected newest-first order, got %s, %s", repos[0].Name, repos[1].Name)
	}
	// A short page means no further requests.
	if len(requests) != 1 {
		t.Errorf("expected 1 request, got %d: %v", len(requests), requests)
	}
	if requests[0] != "/users/someone/repos?direction=desc&page=1&per_page=100&sort=updated&type=public" {
		t.Errorf("unexpected request URL %q", requests[0])
	}
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if _, err := c.FetchPublicRepositories(context.Background(), "someone"); err == nil {
		t.Fatal("expected an error for a 403 response")
	}
}

func TestFetchRejectsNonListPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":"rate limited"}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if _, err := c.FetchPublicRepositories(context.Background(), "someone"); err == nil {
		t.Fatal("expected an error for a non-list payload")
	}
}

func TestFetchRequiresUsername(t *testing.T) {
	c := NewClient()
	if _, err := c.FetchPublicRepositories(context.Background(), ""); err == nil {
		t.Fatal("expected an error for an empty username")
	}
}
