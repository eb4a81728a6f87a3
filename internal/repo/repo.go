package repo

import (
	"sort"
	"strings"
	"time"
)

// Repository is one public repository as shown on the board.
type Repository struct {
	Name        string
	HTMLURL     string
	Description string
	Language    string
	Stars       int
	UpdatedAt   time.Time
	Fork        bool
	Archived    bool
}

// Parse builds a Repository from a decoded GitHub API object. Private
// repositories and entries without a name or URL are rejected. Fields with
// unexpected types fall back to their zero values rather than failing.
func Parse(data map[string]any) (Repository, bool) {
	if asBool(data["private"]) {
		return Repository{}, false
	}

	name := strings.TrimSpace(asString(data["name"]))
	htmlURL := strings.TrimSpace(asString(data["html_url"]))
	if name == "" || htmlURL == "" {
		return Repository{}, false
	}

	updated := asString(data["pushed_at"])
	if updated == "" {
		updated = asString(data["updated_at"])
	}

	return Repository{
		Name:        name,
		HTMLURL:     htmlURL,
		Description: strings.TrimSpace(asString(data["description"])),
		Language:    strings.TrimSpace(asString(data["language"])),
		Stars:       asInt(data["stargazers_count"]),
		UpdatedAt:   parseTimestamp(updated),
		Fork:        asBool(data["fork"]),
		Archived:    asBool(data["archived"]),
	}, true
}

// Sort orders repositories by most recently updated, then by name,
// matching the listing order of the generated page.
func Sort(repos []Repository) {
	sort.SliceStable(repos, func(i, j int) bool {
		if !repos[i].UpdatedAt.Equal(repos[j].UpdatedAt) {
			return repos[i].UpdatedAt.After(repos[j].UpdatedAt)
		}
		return strings.ToLower(repos[i].Name) > strings.ToLower(repos[j].Name)
	})
}

// Split separates repositories into active and archived groups, keeping
// order within each.
func Split(repos []Repository) (active, archived []Repository) {
	for _, r := range repos {
		if r.Archived {
			archived = append(archived, r)
		} else {
			active = append(active, r)
		}
	}
	return active, archived
}

// DisplayLanguage returns the language label, "Unknown" when absent.
func (r Repository) DisplayLanguage() string {
	if r.Language == "" {
		return "Unknown"
	}
	return r.Language
}

// DisplayDescription returns the description with the page's placeholder
// for repositories that have none.
func (r Repository) DisplayDescription() string {
	if r.Description == "" {
		return "No description provided."
	}
	return r.Description
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
