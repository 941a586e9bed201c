package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
)

// SetlistRepository stores the setlist chosen for each video.
type SetlistRepository struct {
	db *sql.DB
}

// NewSetlistRepository creates a new SetlistRepository with the given database connection
func NewSetlistRepository(db *sql.DB) *SetlistRepository {
	return &SetlistRepository{db: db}
}

// Replace stores entries as the setlist of videoID, in order. An empty list clears it.
func (r *SetlistRepository) Replace(videoID string, entries []models.SetlistEntry) error {
	return inTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM stream_songs WHERE video_id = ?`, videoID); err != nil {
			return fmt.Errorf("failed to clear setlist of %s: %w", videoID, err)
		}

		for i, e := range entries {
			_, err := tx.Exec(`
				INSERT INTO stream_songs (id, video_id, position, song_title, artist, start_seconds)
				VALUES (?, ?, ?, ?, ?, ?)`,
				shared.GenerateID(), videoID, i+1, e.SongTitle, e.Artist, e.StartSeconds,
			)
			if err != nil {
				return fmt.Errorf("failed to insert setlist entry %d of %s: %w", i+1, videoID, err)
			}
		}
		return nil
	})
}

// Get returns the stored setlist of a video in performance order.
func (r *SetlistRepository) Get(videoID string) ([]models.SetlistEntry, error) {
	rows, err := r.db.Query(`
		SELECT song_title, artist, start_seconds
		FROM stream_songs
		WHERE video_id = ?
		ORDER BY position ASC`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query setlist: %w", err)
	}
	defer rows.Close()

	var entries []models.SetlistEntry
	for rows.Next() {
		var e models.SetlistEntry
		if err := rows.Scan(&e.SongTitle, &e.Artist, &e.StartSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan setlist entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}
