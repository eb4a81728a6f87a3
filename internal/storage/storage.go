package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"repodeck/internal/repo"
)

// Store caches fetched repositories in sqlite so the board can start
// without hitting the network.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS repositories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	name TEXT NOT NULL,
	html_url TEXT NOT NULL,
	description TEXT DEFAULT '',
	language TEXT DEFAULT '',
	stars INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT DEFAULT NULL,
	fork INTEGER NOT NULL DEFAULT 0,
	archived INTEGER NOT NULL DEFAULT 0,
	position INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_repositories_username ON repositories (username, position);
CREATE TABLE IF NOT EXISTS fetches (
	username TEXT PRIMARY KEY,
	fetched_at TEXT NOT NULL
);`
	_, err := s.db.Exec(ddl)
	return err
}

// ReplaceAll swaps the cached repositories for a user with a fresh fetch
// result and records the fetch time. The listing order is preserved.
func (s *Store) ReplaceAll(username string, repos []repo.Repository) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM repositories WHERE username = ?;`, username); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO repositories
		(username, name, html_url, description, language, stars, updated_at, fork, archived, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range repos {
		updated := sql.NullString{}
		if !r.UpdatedAt.IsZero() {
			updated = sql.NullString{String: r.UpdatedAt.UTC().Format(time.RFC3339), Valid: true}
		}
		if _, err := stmt.Exec(username, r.Name, r.HTMLURL, r.Description, r.Language,
			r.Stars, updated, boolInt(r.Fork), boolInt(r.Archived), i); err != nil {
			return err
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(`INSERT INTO fetches (username, fetched_at) VALUES (?, ?)
		ON CONFLICT(username) DO UPDATE SET fetched_at = excluded.fetched_at;`, username, now); err != nil {
		return err
	}
	return tx.Commit()
}

// FetchAll returns the cached repositories for a user in listing order.
func (s *Store) FetchAll(username string) ([]repo.Repository, error) {
	rows, err := s.db.Query(`SELECT name, html_url, description, language, stars, updated_at, fork, archived
		FROM repositories WHERE username = ? ORDER BY position;`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []repo.Repository
	for rows.Next() {
		var r repo.Repository
		var stars, fork, archived int
		var updated sql.NullString
		if err := rows.Scan(&r.Name, &r.HTMLURL, &r.Description, &r.Language,
			&stars, &updated, &fork, &archived); err != nil {
			return nil, err
		}
		r.Stars = stars
		r.Fork = fork == 1
		r.Archived = archived == 1
		if updated.Valid {
			if parsed, err := time.Parse(time.RFC3339, updated.String); err == nil {
				r.UpdatedAt = parsed
			}
		}
		repos = append(repos, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return repos, nil
}

// LastFetched reports when a user's cache was last refreshed. ok is false
// when the user has never been fetched.
func (s *Store) LastFetched(username string) (time.Time, bool, error) {
	var fetched string
	err := s.db.QueryRow(`SELECT fetched_at FROM fetches WHERE username = ?;`, username).Scan(&fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, fetched)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse fetched_at: %w", err)
	}
	return t, true, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
