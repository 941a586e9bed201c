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

// ArtistResolve resolves a single title and prints the chosen artist.
func (r *Runner) ArtistResolve(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: song title", shared.ErrMissingArgument)
	}

	resolver, err := r.resolver(ctx)
	if err != nil {
		return err
	}

	resolved := resolver.Resolve(ctx, title)

	if cmd.Bool("json") {
		return r.writeJSON(resolved, cmd.Bool("pretty"))
	}

	if !resolved.Found {
		r.writePlain("%s %s\n", r.palette.Warn("✗"), title)
		return nil
	}
	r.writePlain("%s %s → %s %s\n", r.palette.OK("✓"), title, resolved.ArtistNames, r.palette.Help("("+resolved.MatchedTrackName+")"))
	return nil
}

// ArtistUpdate resolves every song still carrying the pending artist placeholder.
//
// With --report-dir the found and not found songs are written to timestamped CSV files.
func (r *Runner) ArtistUpdate(ctx context.Context, cmd *cli.Command) error {
	dryRun := cmd.Bool("dry-run")
	limit := cmd.Int("limit")

	db, err := r.database()
	if err != nil {
		return err
	}

	songRepo := repositories.NewSongRepository(db)
	songs, err := songRepo.Pending()
	if err != nil {
		return err
	}
	if limit > 0 && limit < len(songs) {
		songs = songs[:limit]
	}
	if len(songs) == 0 {
		r.writePlain("%s\n", r.palette.Help("No songs with a pending artist"))
		return nil
	}

	resolver, err := r.resolver(ctx)
	if err != nil {
		return err
	}
	engine := tasks.NewEnrichmentEngine(tasks.EngineOpts{Resolver: resolver, Logger: r.logger})

	var store tasks.SongStore
	if !dryRun {
		store = songRepo
	}

	r.logger.Info("resolving artists", "songs", len(songs), "dry_run", dryRun)

	var result *tasks.ArtistRunResult
	err = r.withProgress(cmd.Bool("quiet"), func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = engine.ResolveArtists(ctx, progress, songs, store)
		return runErr
	})
	if result == nil {
		return err
	}

	if dir := cmd.String("report-dir"); dir != "" {
		if reportErr := r.writeArtistReports(dir, result.Results); reportErr != nil {
			return reportErr
		}
	}

	r.writePlain("\n")
	r.writePlainHeader("Artist Update Complete")
	r.writePlain("%s\n", r.palette.Summary("Processed", len(result.Results), true))
	r.writePlain("%s\n", r.palette.Summary("Updated", result.Updated, true))
	r.writePlain("%s\n", r.palette.Summary("Not found", result.NotFound, false))
	r.writePlain("%s\n", r.palette.Summary("Failed", result.Failed, false))
	if result.NotFound > 0 {
		r.writePlain("%s\n", r.palette.Help("Songs not found keep the "+models.PendingArtist+" artist and need a manual check"))
	}
	return err
}

func (r *Runner) writeArtistReports(dir string, results []tasks.ArtistResult) error {
	rows := make([]formatter.ArtistRow, 0, len(results))
	updated, missing := 0, 0
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		rows = append(rows, formatter.ArtistRow{SongID: res.Song.ID, Title: res.Song.Title, Resolved: res.Resolved})
		if res.Resolved.Found {
			updated++
		} else {
			missing++
		}
	}

	at := r.now()
	if updated > 0 {
		data, err := formatter.UpdatedArtistsToCSV(rows)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, formatter.ReportName("updated_artists", at))
		if err := formatter.WriteFile(path, data); err != nil {
			return err
		}
		r.writePlain("Updated list: %s\n", path)
	}

	if missing > 0 {
		data, err := formatter.NotFoundToCSV(rows)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, formatter.ReportName("not_found", at))
		if err := formatter.WriteFile(path, data); err != nil {
			return err
		}
		r.writePlain("Not found list: %s\n", path)
	}
	return nil
}
