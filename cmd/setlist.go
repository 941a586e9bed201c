package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/vtx/internal/formatter"
	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/repositories"
	"github.com/desertthunder/vtx/internal/shared"
	"github.com/desertthunder/vtx/internal/tasks"
	"github.com/urfave/cli/v3"
)

type setlistOutput struct {
	VideoID string                `json:"video_id"`
	Title   string                `json:"title"`
	Entries []models.SetlistEntry `json:"entries"`
	Error   string                `json:"error,omitempty"`
}

// SetlistExtract mines setlists from the comments of stored videos.
//
// With --dry-run nothing is written to the database. --output-dir names the CSV after --tag.
func (r *Runner) SetlistExtract(ctx context.Context, cmd *cli.Command) error {
	dryRun := cmd.Bool("dry-run")
	useJSON := cmd.Bool("json")

	db, err := r.database()
	if err != nil {
		return err
	}

	videos, err := r.selectVideos(db, cmd.String("tag"), cmd.StringSlice("video"))
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		r.writePlain("%s\n", r.palette.Warn("No videos matched; run 'vtx videos sync' or 'vtx tags classify' first"))
		return nil
	}

	engine, err := r.setlistEngine()
	if err != nil {
		return err
	}

	var store tasks.SetlistStore
	var songs tasks.SongStore
	if !dryRun {
		store = repositories.NewSetlistRepository(db)
		songs = repositories.NewSongRepository(db)
	}

	r.logger.Info("extracting setlists", "videos", len(videos), "dry_run", dryRun)

	var result *tasks.SetlistRunResult
	err = r.withProgress(cmd.Bool("quiet") || useJSON, func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = engine.ExtractSetlists(ctx, progress, videos, store, songs)
		return runErr
	})
	if result == nil {
		return err
	}

	rows := make([]formatter.SetlistRow, 0, len(result.Results))
	for _, res := range result.Results {
		if !res.Setlist.IsEmpty() {
			rows = append(rows, formatter.SetlistRow{Video: res.Video, Entries: res.Setlist.Entries})
		}
	}

	output := cmd.String("output")
	if dir := cmd.String("output-dir"); dir != "" && output == "" {
		output = filepath.Join(dir, formatter.SetlistExportName(cmd.String("tag")))
	}

	if output != "" {
		data, csvErr := formatter.SetlistsToCSV(rows)
		if csvErr != nil {
			return csvErr
		}
		if writeErr := formatter.WriteFile(output, data); writeErr != nil {
			return writeErr
		}
		r.logger.Info("setlists exported", "path", output, "videos", len(rows))
	}

	if useJSON {
		out := make([]setlistOutput, 0, len(result.Results))
		for _, res := range result.Results {
			o := setlistOutput{VideoID: res.Video.ID, Title: res.Video.Title, Entries: res.Setlist.Entries}
			if o.Entries == nil {
				o.Entries = []models.SetlistEntry{}
			}
			if res.Err != nil {
				o.Error = res.Err.Error()
			}
			out = append(out, o)
		}
		if jsonErr := r.writeJSON(out, cmd.Bool("pretty")); jsonErr != nil {
			return jsonErr
		}
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Setlist Extraction Complete")
	r.writePlain("%s\n", r.palette.Summary("With setlist", result.WithSetlist, true))
	r.writePlain("%s\n", r.palette.Summary("No setlist", result.Empty, false))
	r.writePlain("%s\n", r.palette.Summary("Failed", result.Failed, false))
	if !dryRun {
		r.writePlain("%s\n", r.palette.Summary("New songs", result.SongsAdded, true))
	}
	return err
}

// SetlistShow prints the stored setlist of one video.
func (r *Runner) SetlistShow(ctx context.Context, cmd *cli.Command) error {
	videoID := cmd.StringArg("video")
	if videoID == "" {
		return fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	video, err := repositories.NewVideoRepository(db).Get(videoID)
	if err != nil {
		return err
	}

	entries, err := repositories.NewSetlistRepository(db).Get(videoID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if entries == nil {
			entries = []models.SetlistEntry{}
		}
		return r.writeJSON(setlistOutput{VideoID: video.ID, Title: video.Title, Entries: entries}, cmd.Bool("pretty"))
	}

	_, err = r.output.Write(formatter.SetlistToText(formatter.SetlistRow{Video: *video, Entries: entries}))
	return err
}
