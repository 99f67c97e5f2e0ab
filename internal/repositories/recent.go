package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// DefaultRecentCap bounds the recent-queries list when no cap is configured.
const DefaultRecentCap = 25

// RecentQueryRepository maintains the bounded recent-queries list:
// most-recent-first, deduplicated by exact string match, trimmed to the cap
// on every insert.
type RecentQueryRepository struct {
	db  *sql.DB
	cap int
}

// NewRecentQueryRepository creates a RecentQueryRepository with the given
// cap; zero or negative caps fall back to DefaultRecentCap.
func NewRecentQueryRepository(db *sql.DB, cap int) *RecentQueryRepository {
	if cap <= 0 {
		cap = DefaultRecentCap
	}
	return &RecentQueryRepository{db: db, cap: cap}
}

// Add records a query as most recent. Re-adding an existing query moves it
// to the front instead of duplicating it.
func (r *RecentQueryRepository) Add(query string) error {
	if query == "" {
		return nil
	}

	upsert := `
		INSERT INTO recent_queries (query, used_at)
		VALUES (?, ?)
		ON CONFLICT(query) DO UPDATE SET used_at = excluded.used_at
	`
	if _, err := r.db.Exec(upsert, query, time.Now()); err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}

	trim := `
		DELETE FROM recent_queries WHERE id NOT IN (
			SELECT id FROM recent_queries ORDER BY used_at DESC, id DESC LIMIT ?
		)
	`
	if _, err := r.db.Exec(trim, r.cap); err != nil {
		return fmt.Errorf("failed to trim recent queries: %w", err)
	}
	return nil
}

// List returns recent queries, most recent first.
func (r *RecentQueryRepository) List() ([]string, error) {
	rows, err := r.db.Query(`SELECT query FROM recent_queries ORDER BY used_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent queries: %w", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("failed to scan query: %w", err)
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}
