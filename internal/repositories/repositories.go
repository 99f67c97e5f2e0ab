// package repositories provides the sqlite persistence layer.
//
// Two stores live here: the session snapshot (one row under a fixed key,
// overwritten on every completed search) and the recent-queries list
// (capped, deduplicated by exact string, most-recent-first).
package repositories

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_snapshot (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	query TEXT NOT NULL,
	items BLOB NOT NULL,
	new_count INTEGER NOT NULL,
	known_count INTEGER NOT NULL,
	saved_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS recent_queries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL UNIQUE,
	used_at DATETIME NOT NULL
);
`

// InitSchema creates the storage tables if they don't exist.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
