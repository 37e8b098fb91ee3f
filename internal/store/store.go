package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ibeckermayer/sentiview/internal/types"
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite backend
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sentiment_results (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		sentiment TEXT NOT NULL DEFAULT '',
		timestamp TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_results_username ON sentiment_results(username);
	CREATE INDEX IF NOT EXISTS idx_results_timestamp ON sentiment_results(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

const upsertPost = `
	INSERT INTO sentiment_results (id, username, content, sentiment, timestamp)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		username = excluded.username,
		content = excluded.content,
		sentiment = CASE WHEN excluded.sentiment = '' THEN sentiment_results.sentiment ELSE excluded.sentiment END,
		timestamp = excluded.timestamp
`

// SavePosts upserts posts in a single transaction. An empty incoming
// sentiment never overwrites a stored label.
func (s *Store) SavePosts(ctx context.Context, posts []types.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertPost)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range posts {
		if p.ID == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, postArgs(p)...); err != nil {
			return fmt.Errorf("save post %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// Posts returns every post, newest first
func (s *Store) Posts(ctx context.Context) ([]types.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, content, sentiment, timestamp
		FROM sentiment_results
		ORDER BY timestamp = '', timestamp DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

// UserPosts returns posts by username, newest first
func (s *Store) UserPosts(ctx context.Context, username string) ([]types.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, content, sentiment, timestamp
		FROM sentiment_results
		WHERE username = ?
		ORDER BY timestamp = '', timestamp DESC, id
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

// Usernames returns the distinct authors in alphabetical order
func (s *Store) Usernames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT username FROM sentiment_results ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// UnlabeledPosts returns posts without a sentiment label, newest first
func (s *Store) UnlabeledPosts(ctx context.Context, limit int) ([]types.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, content, sentiment, timestamp
		FROM sentiment_results
		WHERE sentiment = ''
		ORDER BY timestamp = '', timestamp DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

// SaveLabels writes analyzer labels onto their posts. Labels for unknown
// posts are ignored. Returns the number of posts updated.
func (s *Store) SaveLabels(ctx context.Context, labels []types.Label) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	updated := 0
	for _, l := range labels {
		res, err := tx.ExecContext(ctx, `UPDATE sentiment_results SET sentiment = ? WHERE id = ?`, l.Sentiment, l.PostID)
		if err != nil {
			return 0, fmt.Errorf("label post %s: %w", l.PostID, err)
		}
		n, _ := res.RowsAffected()
		updated += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return updated, nil
}

// CountPosts returns the number of stored posts
func (s *Store) CountPosts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sentiment_results`).Scan(&n)
	return n, err
}

func postArgs(p types.Post) []any {
	var ts string
	if p.HasTimestamp() {
		ts = p.Timestamp.UTC().Format(timestampLayout)
	}
	return []any{p.ID, p.Username, p.Content, p.Sentiment, ts}
}

// timestampLayout sorts lexically in chronological order
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func scanPosts(rows *sql.Rows) ([]types.Post, error) {
	posts := []types.Post{}
	for rows.Next() {
		var p types.Post
		var ts string

		if err := rows.Scan(&p.ID, &p.Username, &p.Content, &p.Sentiment, &ts); err != nil {
			return nil, err
		}

		if parsed, ok := types.ParseTimestamp(ts); ok {
			p.Timestamp = parsed.In(time.Local)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
