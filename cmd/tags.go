package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/desertthunder/vtx/internal/formatter"
	"github.com/desertthunder/vtx/internal/repositories"
	"github.com/desertthunder/vtx/internal/shared"
	"github.com/desertthunder/vtx/internal/tagging"
	"github.com/desertthunder/vtx/internal/tasks"
	"github.com/urfave/cli/v3"
)

type tagOutput struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TagsClassify tags every stored video from its title, description, start time and duration.
func (r *Runner) TagsClassify(ctx context.Context, cmd *cli.Command) error {
	dryRun := cmd.Bool("dry-run")

	db, err := r.database()
	if err != nil {
		return err
	}

	tagRepo := repositories.NewTagRepository(db)
	vocab, err := tagRepo.Vocabulary()
	if err != nil {
		return err
	}

	videos, err := repositories.NewVideoRepository(db).List()
	if err != nil {
		return err
	}

	classifier, err := r.classifier()
	if err != nil {
		return err
	}
	engine := tasks.NewEnrichmentEngine(tasks.EngineOpts{Classifier: classifier, Logger: r.logger})

	var store tasks.TagStore
	if !dryRun {
		store = tagRepo
	}

	var result *tasks.TagRunResult
	err = r.withProgress(cmd.Bool("quiet"), func(progress chan<- tasks.ProgressUpdate) error {
		var runErr error
		result, runErr = engine.ClassifyTags(ctx, progress, videos, vocab, store)
		return runErr
	})
	if result == nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		rows := make([]formatter.TagRow, 0, len(result.Results))
		for _, res := range result.Results {
			rows = append(rows, formatter.TagRow{Video: res.Video, Match: res.Tags})
		}
		data, csvErr := formatter.TagsToCSV(rows, vocab)
		if csvErr != nil {
			return csvErr
		}
		if writeErr := formatter.WriteFile(output, data); writeErr != nil {
			return writeErr
		}
		r.logger.Info("tags exported", "path", output, "videos", len(rows))
	}

	r.writePlain("\n")
	r.writePlainHeader("Tag Classification Complete")
	r.writePlain("%s\n", r.palette.Summary("Tagged", result.Tagged, true))
	r.writePlain("%s\n", r.palette.Summary("Untagged", result.Untagged, false))
	r.writePlain("%s\n", r.palette.Summary("Failed", result.Failed, false))
	return err
}

// TagsExplain classifies an ad-hoc title against the stored vocabulary.
func (r *Runner) TagsExplain(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}

	in := tagging.Input{Title: title, Duration: cmd.String("duration")}
	if raw := cmd.String("started-at"); raw != "" {
		startedAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("%w: started-at: %v", shared.ErrInvalidInput, err)
		}
		in.StartedAt = &startedAt
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	vocab, err := repositories.NewTagRepository(db).Vocabulary()
	if err != nil {
		return err
	}

	classifier, err := r.classifier()
	if err != nil {
		return err
	}
	reasons := classifier.Explain(in, vocab)

	if cmd.Bool("json") {
		return r.writeJSON(reasons, cmd.Bool("pretty"))
	}

	if len(reasons) == 0 {
		r.writePlain("%s\n", r.palette.Warn("No tags matched"))
		return nil
	}
	for _, name := range classifier.Classify(in, vocab).Names(vocab) {
		r.writePlain("%s %s\n", r.palette.OK(name), r.palette.Help("("+reasons[name]+")"))
	}
	return nil
}

// TagsExport writes the stored tag assignments of every tagged video as CSV.
//
// With --dir the export gets a timestamped name and dir/latest.csv is pointed at it.
func (r *Runner) TagsExport(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	tagRepo := repositories.NewTagRepository(db)
	vocab, err := tagRepo.Vocabulary()
	if err != nil {
		return err
	}
	assigned, err := tagRepo.AllVideoTags()
	if err != nil {
		return err
	}
	videos, err := repositories.NewVideoRepository(db).List()
	if err != nil {
		return err
	}

	rows := make([]formatter.TagRow, 0, len(videos))
	for _, v := range videos {
		if match, ok := assigned[v.ID]; ok && len(match) > 0 {
			rows = append(rows, formatter.TagRow{Video: v, Match: match})
		}
	}

	data, err := formatter.TagsToCSV(rows, vocab)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if dir := cmd.String("dir"); dir != "" {
		name := formatter.TagExportName(r.now())
		if err := formatter.WriteFile(filepath.Join(dir, name), data); err != nil {
			return err
		}
		if err := formatter.LinkLatest(dir, name); err != nil {
			return err
		}
		r.writePlain("%s Exported tags of %d videos to %s\n", r.palette.OK("✓"), len(rows), filepath.Join(dir, name))
		r.writePlain("Latest: %s\n", filepath.Join(dir, formatter.LatestName))
		if output == "" {
			return nil
		}
	}

	if output == "" {
		_, err = r.output.Write(data)
		return err
	}

	if err := formatter.WriteFile(output, data); err != nil {
		return err
	}
	r.writePlain("%s Exported tags of %d videos to %s\n", r.palette.OK("✓"), len(rows), output)
	return nil
}

// TagsList prints the tag vocabulary ordered by id.
func (r *Runner) TagsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	vocab, err := repositories.NewTagRepository(db).Vocabulary()
	if err != nil {
		return err
	}

	out := make([]tagOutput, 0, len(vocab))
	for _, id := range vocab.IDs() {
		out = append(out, tagOutput{ID: id, Name: vocab[id]})
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	for _, t := range out {
		r.writePlain("%3d  %s\n", t.ID, t.Name)
	}
	return nil
}

// TagsAdd appends a tag name to the vocabulary. Names without a rule match by title substring.
func (r *Runner) TagsAdd(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: tag name", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	id, err := repositories.NewTagRepository(db).Add(name)
	if err != nil {
		return err
	}

	r.writePlain("%s Added tag %s (id %d)\n", r.palette.OK("✓"), name, id)
	return nil
}
