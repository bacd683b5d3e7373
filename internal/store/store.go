// Package store persists the boost history so the bot never re-shares a
// post and can avoid leaning on the same authors run after run.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Boost records one re-shared post.
type Boost struct {
	ID        int64     `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	URL       string    `db:"url" json:"url"`
	Acct      string    `db:"acct" json:"acct"`
	Score     float64   `db:"score" json:"score"`
	BoostedAt time.Time `db:"boosted_at" json:"boosted_at"`
}

// Store is the persistence interface.
type Store interface {
	AddBoost(ctx context.Context, b *Boost) error
	WasBoosted(ctx context.Context, url string) (bool, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	RecentAuthors(ctx context.Context, n int) (map[string]bool, error)
	ListBoosts(ctx context.Context, since time.Time, limit int) ([]Boost, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AddBoost(ctx context.Context, b *Boost) error {
	if b.BoostedAt.IsZero() {
		b.BoostedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO boosts (post_id, url, acct, score, boosted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			score = excluded.score,
			boosted_at = excluded.boosted_at
	`, b.PostID, b.URL, b.Acct, b.Score, b.BoostedAt)
	if err != nil {
		return fmt.Errorf("add boost %s: %w", b.URL, err)
	}
	b.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) WasBoosted(ctx context.Context, url string) (bool, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, "SELECT id FROM boosts WHERE url = ?", url)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup boost %s: %w", url, err)
	}
	return true, nil
}

func (s *SQLiteStore) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM boosts WHERE boosted_at >= ?", since)
	if err != nil {
		return 0, fmt.Errorf("count boosts: %w", err)
	}
	return count, nil
}

// RecentAuthors returns the distinct authors of the last n boosts.
func (s *SQLiteStore) RecentAuthors(ctx context.Context, n int) (map[string]bool, error) {
	if n <= 0 {
		n = 10
	}
	var accts []string
	err := s.db.SelectContext(ctx, &accts, `
		SELECT acct FROM (
			SELECT acct FROM boosts ORDER BY boosted_at DESC LIMIT ?
		) WHERE acct != ''
	`, n)
	if err != nil {
		return nil, fmt.Errorf("recent authors: %w", err)
	}

	authors := make(map[string]bool, len(accts))
	for _, acct := range accts {
		authors[acct] = true
	}
	return authors, nil
}

func (s *SQLiteStore) ListBoosts(ctx context.Context, since time.Time, limit int) ([]Boost, error) {
	query := "SELECT * FROM boosts WHERE 1=1"
	var args []any

	if !since.IsZero() {
		query += " AND boosted_at >= ?"
		args = append(args, since)
	}

	query += " ORDER BY boosted_at DESC"

	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var boosts []Boost
	if err := s.db.SelectContext(ctx, &boosts, query, args...); err != nil {
		return nil, fmt.Errorf("list boosts: %w", err)
	}
	return boosts, nil
}
