// Package github fetches a user's public repositories from the GitHub
// REST API.
package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"

	"repodeck/internal/repo"
)

const (
	defaultAPIRoot = "https://api.github.com"
	defaultPerPage = 100
	userAgent      = "repodeck-client"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the GitHub REST API. The zero value is not usable; use
// NewClient.
type Client struct {
	apiRoot string
	token   string
	http    *http.Client
}

// Option adjusts a Client.
type Option func(*Client)

// WithToken sets a bearer token for authenticated requests.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithBaseURL points the client at a different API root. Used by tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.apiRoot = base }
}

// NewClient returns a Client with a 30 second request timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		apiRoot: defaultAPIRoot,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPublicRepositories pages through the user's public repositories,
// newest first, and returns them parsed and sorted.
func (c *Client) FetchPublicRepositories(ctx context.Context, username string) ([]repo.Repository, error) {
	if username == "" {
		return nil, fmt.Errorf("github: username is empty")
	}

	var repos []repo.Repository
	for page := 1; ; page++ {
		pageData, err := c.fetchPage(ctx, username, page)
		if err != nil {
			return nil, err
		}
		if len(pageData) == 0 {
			break
		}
		for _, item := range pageData {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if r, ok := repo.Parse(obj); ok {
				repos = append(repos, r)
			}
		}
		if len(pageData) < defaultPerPage {
			break
		}
	}

	repo.Sort(repos)
	return repos, nil
}

func (c *Client) fetchPage(ctx context.Context, username string, page int) ([]any, error) {
	u := c.pageURL(username, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("github: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("github: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github: status %d for %s", resp.StatusCode, u)
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("github: decode response: %w", err)
	}
	list, ok := parsed.([]any)
	if !ok {
		return nil, fmt.Errorf("github: unexpected response shape, expected a list")
	}
	return list, nil
}

func (c *Client) pageURL(username string, page int) string {
	q := url.Values{}
	q.Set("type", "public")
	q.Set("sort", "updated")
	q.Set("direction", "desc")
	q.Set("per_page", fmt.Sprintf("%d", defaultPerPage))
	q.Set("page", fmt.Sprintf("%d", page))
	return fmt.Sprintf("%s/users/%s/repos?%s", c.apiRoot, url.PathEscape(username), q.Encode())
}
