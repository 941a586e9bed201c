package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/vtx/internal/formatter"
	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/repositories"
	"github.com/urfave/cli/v3"
)

type songOutput struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// SongsList prints the song catalog or only the songs awaiting an artist.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	repo := repositories.NewSongRepository(db)
	var songs []models.Song
	if cmd.Bool("pending") {
		songs, err = repo.Pending()
	} else {
		songs, err = repo.List()
	}
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		data, err := formatter.SongsToCSV(songs)
		if err != nil {
			return err
		}
		if err := formatter.WriteFile(output, data); err != nil {
			return err
		}
		r.logger.Info("songs exported", "path", output, "count", len(songs))
	}

	if cmd.Bool("json") {
		out := make([]songOutput, 0, len(songs))
		for _, s := range songs {
			out = append(out, songOutput{ID: s.ID, Title: s.Title, Artist: s.Artist})
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	for _, s := range songs {
		artistName := s.Artist
		if artistName == models.PendingArtist {
			artistName = r.palette.Warn(artistName)
		}
		r.writePlain("%s / %s\n", s.Title, artistName)
	}
	r.writePlain("%s\n", r.palette.Help(fmt.Sprintf("%d songs", len(songs))))
	return nil
}
