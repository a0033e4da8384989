// Package history keeps a log of resolved URLs in SQLite.
// It records outcomes only; markup is never stored or served from here.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"urlembed/internal/embed"
)

const schema = `
CREATE TABLE IF NOT EXISTS resolutions (
	url          TEXT PRIMARY KEY,
	id           TEXT NOT NULL,
	provider     TEXT NOT NULL DEFAULT '',
	kind         TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT '',
	elapsed_ms   INTEGER NOT NULL DEFAULT 0,
	resolver_url TEXT NOT NULL DEFAULT '',
	resolved_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS resolutions_resolved_at ON resolutions (resolved_at DESC);
`

// Entry is one logged resolution. Resolving the same URL again replaces its entry.
type Entry struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Provider    string    `json:"provider,omitempty"`
	Kind        string    `json:"kind"`
	Error       string    `json:"error,omitempty"`
	ElapsedMs   int64     `json:"elapsedMs"`
	ResolverURL string    `json:"resolverURL,omitempty"`
	ResolvedAt  time.Time `json:"resolvedAt"`
}

// OK reports whether the resolution succeeded.
func (e Entry) OK() bool { return e.Kind == "ok" }

// Store is a SQLite-backed resolution log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	// Writes arrive from concurrent resolutions; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record logs the outcome of a finished request.
func (s *Store) Record(ctx context.Context, req *embed.Request) error {
	var errText string
	if req.Err != nil {
		errText = req.Err.Error()
	}
	resolvedAt := req.FinishedAt
	if resolvedAt.IsZero() {
		resolvedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO resolutions (url, id, provider, kind, error, elapsed_ms, resolver_url, resolved_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (url) DO UPDATE SET
	id = excluded.id,
	provider = excluded.provider,
	kind = excluded.kind,
	error = excluded.error,
	elapsed_ms = excluded.elapsed_ms,
	resolver_url = excluded.resolver_url,
	resolved_at = excluded.resolved_at`,
		req.URL(), req.ID, req.Provider, embed.Kind(req.Err), errText,
		req.ElapsedMs(), req.ResolverURL, resolvedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", req.URL(), err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit of zero or less returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, url, provider, kind, error, elapsed_ms, resolver_url, resolved_at
FROM resolutions
ORDER BY resolved_at DESC, rowid DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			resolvedAt int64
		)
		if err := rows.Scan(&e.ID, &e.URL, &e.Provider, &e.Kind, &e.Error, &e.ElapsedMs, &e.ResolverURL, &resolvedAt); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		e.ResolvedAt = time.UnixMilli(resolvedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}

// Remove deletes the entry for url. Removing an absent URL is not an error.
func (s *Store) Remove(ctx context.Context, url string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM resolutions WHERE url = ?`, url); err != nil {
		return fmt.Errorf("removing %s: %w", url, err)
	}
	return nil
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM resolutions`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}
