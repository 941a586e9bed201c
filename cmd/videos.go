package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/repositories"
	"github.com/desertthunder/vtx/internal/shared"
	"github.com/desertthunder/vtx/internal/tasks"
	"github.com/urfave/cli/v3"
)

type videoOutput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	StartedAt   string `json:"started_at,omitempty"`
	Duration    string `json:"duration,omitempty"`
}

func toVideoOutput(v models.Video) videoOutput {
	out := videoOutput{
		ID:          v.ID,
		Title:       v.Title,
		URL:         v.URL(),
		PublishedAt: v.PublishedAt.Format(time.RFC3339),
		Duration:    v.Duration,
	}
	if v.StartedAt != nil {
		out.StartedAt = v.StartedAt.Format(time.RFC3339)
	}
	return out
}

// VideosSync fetches the channel uploads and upserts them into the videos table.
func (r *Runner) VideosSync(ctx context.Context, cmd *cli.Command) error {
	channelID := cmd.String("channel")
	if channelID == "" {
		channelID = r.config.Credentials.YouTube.ChannelID
	}
	if channelID == "" {
		return fmt.Errorf("%w: --channel or credentials.youtube.channel_id", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	yt, err := r.youtubeClient()
	if err != nil {
		return err
	}

	engine := tasks.NewEnrichmentEngine(tasks.EngineOpts{Videos: yt, Logger: r.logger})
	store := repositories.NewVideoRepository(db)

	var result *tasks.SyncResult
	err = r.withProgress(cmd.Bool("quiet"), func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = engine.SyncVideos(ctx, progress, channelID, cmd.Int("limit"), store)
		return runErr
	})
	if err != nil {
		return err
	}

	r.writePlain("%s Synced %d videos from %s\n", r.palette.OK("✓"), result.Stored, channelID)
	return nil
}

// VideosList prints stored videos, optionally filtered by tag name.
func (r *Runner) VideosList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	videos, err := r.selectVideos(db, cmd.String("tag"), nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]videoOutput, 0, len(videos))
		for _, v := range videos {
			out = append(out, toVideoOutput(v))
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	for _, v := range videos {
		r.writePlain("%s  %s  %s\n", r.palette.Help(v.PublishedAt.Format("2006-01-02")), v.ID, v.Title)
	}
	r.writePlain("%s\n", r.palette.Help(fmt.Sprintf("%d videos", len(videos))))
	return nil
}

// selectVideos loads explicit ids when given, else every video carrying tag, else every video.
func (r *Runner) selectVideos(db *sql.DB, tag string, ids []string) ([]models.Video, error) {
	repo := repositories.NewVideoRepository(db)

	if len(ids) > 0 {
		videos := make([]models.Video, 0, len(ids))
		for _, id := range ids {
			v, err := repo.Get(id)
			if err != nil {
				return nil, err
			}
			videos = append(videos, *v)
		}
		return videos, nil
	}

	if tag != "" {
		if _, err := repositories.NewTagRepository(db).ID(tag); err != nil {
			return nil, err
		}
		return repo.ListByTag(tag)
	}
	return repo.List()
}
