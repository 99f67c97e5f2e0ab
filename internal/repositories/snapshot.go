package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/groupscout/groupscout/internal/models"
	"github.com/groupscout/groupscout/internal/shared"
)

// SnapshotRepository implements session.SnapshotStore over sqlite. The
// snapshot lives in a single fixed-key row; saving overwrites any prior one.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a SnapshotRepository with the given database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save writes the snapshot, replacing the previous one.
func (r *SnapshotRepository) Save(snap models.Snapshot) error {
	items, err := json.Marshal(snap.Items)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot items: %w", err)
	}

	query := `
		INSERT INTO session_snapshot (id, query, items, new_count, known_count, saved_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			query = excluded.query,
			items = excluded.items,
			new_count = excluded.new_count,
			known_count = excluded.known_count,
			saved_at = excluded.saved_at
	`
	if _, err := r.db.Exec(query, snap.Query, items, snap.NewCount, snap.KnownCount, snap.SavedAt); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. Returns shared.ErrSnapshotMissing when no
// snapshot exists.
func (r *SnapshotRepository) Load() (models.Snapshot, error) {
	var snap models.Snapshot
	var items []byte
	var savedAt time.Time

	row := r.db.QueryRow(`SELECT query, items, new_count, known_count, saved_at FROM session_snapshot WHERE id = 1`)
	if err := row.Scan(&snap.Query, &items, &snap.NewCount, &snap.KnownCount, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Snapshot{}, shared.ErrSnapshotMissing
		}
		return models.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if err := json.Unmarshal(items, &snap.Items); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to decode snapshot items: %w", err)
	}
	snap.SavedAt = savedAt
	return snap, nil
}

// Clear deletes the stored snapshot, if any.
func (r *SnapshotRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM session_snapshot WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
