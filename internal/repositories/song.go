package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
)

// SongRepository stores the song catalog. Songs added without an artist carry the [models.PendingArtist] placeholder.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Ensure adds the titles that are not in the catalog yet and returns how many were added.
func (r *SongRepository) Ensure(titles ...string) (int, error) {
	entries := make([]models.SetlistEntry, 0, len(titles))
	for _, title := range titles {
		entries = append(entries, models.SetlistEntry{SongTitle: title})
	}
	return r.EnsureEntries(entries...)
}

// EnsureEntries adds the songs of entries that are not in the catalog yet and returns how many
// were added. The artist given in the entry is kept; songs without one get [models.PendingArtist].
func (r *SongRepository) EnsureEntries(entries ...models.SetlistEntry) (int, error) {
	added := 0
	err := inTx(r.db, func(tx *sql.Tx) error {
		for _, entry := range entries {
			title := strings.TrimSpace(entry.SongTitle)
			if title == "" {
				continue
			}

			artist := strings.TrimSpace(entry.Artist)
			if artist == "" {
				artist = models.PendingArtist
			}

			result, err := tx.Exec(
				`INSERT OR IGNORE INTO songs (id, title, artist) VALUES (?, ?, ?)`,
				shared.GenerateID(), title, artist,
			)
			if err != nil {
				return fmt.Errorf("failed to insert song %q: %w", title, err)
			}

			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get affected rows: %w", err)
			}
			added += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Pending returns the songs whose artist is still the placeholder.
func (r *SongRepository) Pending() ([]models.Song, error) {
	return r.query(`SELECT id, title, artist FROM songs WHERE artist = ? ORDER BY title`, models.PendingArtist)
}

// List returns the whole catalog ordered by title.
func (r *SongRepository) List() ([]models.Song, error) {
	return r.query(`SELECT id, title, artist FROM songs ORDER BY title`)
}

// GetByTitle retrieves a song by its exact title.
func (r *SongRepository) GetByTitle(title string) (*models.Song, error) {
	var s models.Song
	err := r.db.QueryRow(`SELECT id, title, artist FROM songs WHERE title = ?`, title).Scan(&s.ID, &s.Title, &s.Artist)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, title)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}
	return &s, nil
}

// UpdateArtist records the resolved artist of a song.
func (r *SongRepository) UpdateArtist(id string, resolved models.ResolvedArtist) error {
	if !resolved.Found || resolved.ArtistNames == "" {
		return fmt.Errorf("%w: unresolved artist for song %s", shared.ErrInvalidInput, id)
	}

	result, err := r.db.Exec(
		`UPDATE songs SET artist = ?, matched_track_name = ?, updated_at = ? WHERE id = ?`,
		resolved.ArtistNames, resolved.MatchedTrackName, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	return nil
}

func (r *SongRepository) query(query string, args ...any) ([]models.Song, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		var s models.Song
		if err := rows.Scan(&s.ID, &s.Title, &s.Artist); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}
