// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists bookmarks and recent searches in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubscope/pkg/types"
)

// DefaultHistorySize is the number of recent searches kept.
const DefaultHistorySize = 5

// timeLayout is fixed width so stored timestamps order as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a bookmark or search does not exist.
var ErrNotFound = errors.New("not found")

// Bookmark marks a publication for later.
type Bookmark struct {
	PublicationID string    `json:"publication_id" yaml:"publication_id"`
	Title         string    `json:"title" yaml:"title"`
	Note          string    `json:"note,omitempty" yaml:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// Store manages the bookmark and history database.
type Store struct {
	db          *sql.DB
	historySize int
	now         func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens or creates the database at cfg.Path and creates the schema if
// it does not exist.
func Open(cfg types.StoreConfig, opts ...Option) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("no store path configured")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	historySize := cfg.HistorySize
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	s := &Store{db: db, historySize: historySize, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS bookmarks (
			publication_id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// AddBookmark stores b, replacing any bookmark of the same publication.
// A zero CreatedAt is set to the current time.
func (s *Store) AddBookmark(ctx context.Context, b Bookmark) error {
	if strings.TrimSpace(b.PublicationID) == "" {
		return fmt.Errorf("bookmark needs a publication id")
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookmarks (publication_id, title, note, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(publication_id) DO UPDATE SET title = excluded.title, note = excluded.note`,
		b.PublicationID, b.Title, b.Note, b.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("adding bookmark %s: %w", b.PublicationID, err)
	}
	return nil
}

// RemoveBookmark deletes the bookmark of publication id.
func (s *Store) RemoveBookmark(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE publication_id = ?`, id)
	if err != nil {
		return fmt.Errorf("removing bookmark %s: %w", id, err)
	}
	return requireAffected(res, "bookmark "+id)
}

// IsBookmarked reports whether publication id is bookmarked.
func (s *Store) IsBookmarked(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM bookmarks WHERE publication_id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("checking bookmark %s: %w", id, err)
	}
	return n > 0, nil
}

// Bookmarks returns every bookmark, newest first.
func (s *Store) Bookmarks(ctx context.Context) ([]Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT publication_id, title, note, created_at FROM bookmarks ORDER BY created_at DESC, publication_id`)
	if err != nil {
		return nil, fmt.Errorf("querying bookmarks: %w", err)
	}
	defer rows.Close()

	out := []Bookmark{}
	for rows.Next() {
		var b Bookmark
		var created string
		if err := rows.Scan(&b.PublicationID, &b.Title, &b.Note, &created); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, b)
	}
	return out, rows.Err()
}

// RecordSearch puts query at the front of the history. A query already in
// the history moves to the front. Only the newest entries up to the history
// size are kept. Blank queries are ignored.
func (s *Store) RecordSearch(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM searches WHERE query = ?`, query); err != nil {
		return fmt.Errorf("recording search: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO searches (query, created_at) VALUES (?, ?)`,
		query, s.now().UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("recording search: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM searches WHERE id NOT IN (SELECT id FROM searches ORDER BY id DESC LIMIT ?)`,
		s.historySize,
	); err != nil {
		return fmt.Errorf("trimming search history: %w", err)
	}
	return tx.Commit()
}

// RecentSearches returns the history, most recent first.
func (s *Store) RecentSearches(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT query FROM searches ORDER BY id DESC LIMIT ?`, s.historySize)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scanning search: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// RemoveSearch deletes query from the history.
func (s *Store) RemoveSearch(ctx context.Context, query string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM searches WHERE query = ?`, strings.TrimSpace(query))
	if err != nil {
		return fmt.Errorf("removing search: %w", err)
	}
	return requireAffected(res, "search "+query)
}

// ClearSearches empties the history.
func (s *Store) ClearSearches(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM searches`); err != nil {
		return fmt.Errorf("clearing searches: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
