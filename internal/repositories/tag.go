package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
)

// TagRepository stores the tag vocabulary and the tags assigned to videos.
type TagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new TagRepository with the given database connection
func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Vocabulary loads the full tag vocabulary.
func (r *TagRepository) Vocabulary() (models.TagVocabulary, error) {
	rows, err := r.db.Query(`SELECT id, name FROM stream_tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	vocab := models.TagVocabulary{}
	for rows.Next() {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		vocab[id] = name
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return vocab, nil
}

// ID looks up the id of a tag name.
func (r *TagRepository) ID(name string) (int, error) {
	var id int
	err := r.db.QueryRow(`SELECT id FROM stream_tags WHERE name = ?`, strings.TrimSpace(name)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", shared.ErrTagNotFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query tag: %w", err)
	}
	return id, nil
}

// Add appends a tag to the vocabulary and returns its id.
func (r *TagRepository) Add(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: tag name is empty", shared.ErrInvalidInput)
	}

	result, err := r.db.Exec(`INSERT INTO stream_tags (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert tag %q: %w", name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get tag id: %w", err)
	}
	return int(id), nil
}

// ReplaceVideoTags sets the tags of a video, dropping the ones it had before.
func (r *TagRepository) ReplaceVideoTags(videoID string, match models.TagMatch) error {
	return inTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM video_stream_tags WHERE video_id = ?`, videoID); err != nil {
			return fmt.Errorf("failed to clear tags of %s: %w", videoID, err)
		}

		for _, id := range match.IDs() {
			if _, err := tx.Exec(`INSERT INTO video_stream_tags (video_id, tag_id) VALUES (?, ?)`, videoID, id); err != nil {
				return fmt.Errorf("failed to tag %s with %d: %w", videoID, id, err)
			}
		}
		return nil
	})
}

// VideoTags returns the tags assigned to one video.
func (r *TagRepository) VideoTags(videoID string) (models.TagMatch, error) {
	all, err := r.assignments(`SELECT video_id, tag_id FROM video_stream_tags WHERE video_id = ?`, videoID)
	if err != nil {
		return nil, err
	}
	if m, ok := all[videoID]; ok {
		return m, nil
	}
	return models.NewTagMatch(), nil
}

// AllVideoTags returns the tag assignments of every video, keyed by video id.
func (r *TagRepository) AllVideoTags() (map[string]models.TagMatch, error) {
	return r.assignments(`SELECT video_id, tag_id FROM video_stream_tags`)
}

func (r *TagRepository) assignments(query string, args ...any) (map[string]models.TagMatch, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query video tags: %w", err)
	}
	defer rows.Close()

	out := map[string]models.TagMatch{}
	for rows.Next() {
		var (
			videoID string
			tagID   int
		)
		if err := rows.Scan(&videoID, &tagID); err != nil {
			return nil, fmt.Errorf("failed to scan video tag: %w", err)
		}
		if out[videoID] == nil {
			out[videoID] = models.NewTagMatch()
		}
		out[videoID].Add(tagID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}
