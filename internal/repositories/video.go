package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
)

const videoColumns = `v.id, v.channel_id, v.title, v.description, v.published_at, v.started_at, v.duration`

// VideoRepository stores channel videos.
type VideoRepository struct {
	db *sql.DB
}

// NewVideoRepository creates a new VideoRepository with the given database connection
func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Upsert inserts videos or refreshes the stored metadata of existing ones.
func (r *VideoRepository) Upsert(videos ...models.Video) error {
	query := `
		INSERT INTO videos (id, channel_id, title, description, published_at, started_at, duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			channel_id = excluded.channel_id,
			title = excluded.title,
			description = excluded.description,
			published_at = excluded.published_at,
			started_at = excluded.started_at,
			duration = excluded.duration,
			updated_at = excluded.updated_at
	`

	return inTx(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare video upsert: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, v := range videos {
			if v.ID == "" || v.Title == "" {
				return fmt.Errorf("%w: video requires id and title", shared.ErrInvalidInput)
			}

			published := v.PublishedAt
			if _, err := stmt.Exec(
				v.ID,
				v.ChannelID,
				v.Title,
				v.Description,
				nullTime(&published),
				nullTime(v.StartedAt),
				v.Duration,
				now,
				now,
			); err != nil {
				return fmt.Errorf("failed to upsert video %s: %w", v.ID, err)
			}
		}
		return nil
	})
}

// Get retrieves a video by ID
func (r *VideoRepository) Get(id string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos v WHERE v.id = ?`

	v, err := scanVideo(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrVideoNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// List returns every stored video, newest first.
func (r *VideoRepository) List() ([]models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos v ORDER BY v.published_at DESC, v.id ASC`
	return r.query(query)
}

// ListByTag returns the videos carrying the named tag, newest first.
func (r *VideoRepository) ListByTag(tag string) ([]models.Video, error) {
	query := `
		SELECT ` + videoColumns + `
		FROM videos v
		JOIN video_stream_tags vt ON vt.video_id = v.id
		JOIN stream_tags t ON t.id = vt.tag_id
		WHERE t.name = ?
		ORDER BY v.published_at DESC, v.id ASC
	`
	return r.query(query, tag)
}

func (r *VideoRepository) query(query string, args ...any) ([]models.Video, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return videos, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(s scanner) (*models.Video, error) {
	var (
		v         models.Video
		published sql.NullTime
		started   sql.NullTime
	)

	err := s.Scan(&v.ID, &v.ChannelID, &v.Title, &v.Description, &published, &started, &v.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan video: %w", err)
	}

	if published.Valid {
		v.PublishedAt = published.Time
	}
	v.StartedAt = timePtr(started)
	return &v, nil
}
