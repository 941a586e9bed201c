package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vtx/internal/artist"
	"github.com/desertthunder/vtx/internal/services"
	"github.com/desertthunder/vtx/internal/setlist"
	"github.com/desertthunder/vtx/internal/shared"
	"github.com/desertthunder/vtx/internal/tagging"
	"github.com/desertthunder/vtx/internal/tasks"
	"github.com/desertthunder/vtx/internal/ui"
	"github.com/urfave/cli/v3"
)

// YouTubeClient is the part of the YouTube Data API the commands use.
type YouTubeClient interface {
	tasks.CommentSource
	tasks.VideoSource
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Collaborators and the database are created on first use so commands that need none of them
// run without credentials.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	ownsDB     bool
	youtube    YouTubeClient
	catalog    artist.Searcher
	logger     *log.Logger
	output     io.Writer
	palette    *ui.Palette
	now        func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB
	YouTube    YouTubeClient
	Catalog    artist.Searcher
	Logger     *log.Logger
	Output     io.Writer
	Now        func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		db:         opts.DB,
		youtube:    opts.YouTube,
		catalog:    opts.Catalog,
		logger:     opts.Logger,
		output:     opts.Output,
		palette:    ui.Default,
		now:        opts.Now,
	}
}

// configFile returns the --config flag when given, else the path the runner was started with.
func (r *Runner) configFile(cmd *cli.Command) string {
	if !cmd.IsSet("config") && r.configPath != "" {
		return r.configPath
	}
	return cmd.String("config")
}

// Close releases the database when the runner opened it.
func (r *Runner) Close() error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, videosCommand, setlistCommand, tagsCommand, artistCommand, songsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// database opens and migrates the configured database once.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	r.logger.Debug("opening database", "path", r.config.Database.Path)
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	r.ownsDB = true
	return db, nil
}

func (r *Runner) youtubeClient() (YouTubeClient, error) {
	if r.youtube != nil {
		return r.youtube, nil
	}

	svc, err := services.NewYouTubeService(r.config.Credentials.YouTube)
	if err != nil {
		return nil, err
	}
	r.youtube = svc
	return svc, nil
}

func (r *Runner) catalogSearcher(ctx context.Context) (artist.Searcher, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	svc, err := services.NewSpotifyService(ctx, r.config.Credentials.Spotify)
	if err != nil {
		return nil, err
	}
	r.catalog = svc
	return svc, nil
}

// setlistEngine wires the comment source and extractor with the configured comment interval.
func (r *Runner) setlistEngine() (*tasks.EnrichmentEngine, error) {
	yt, err := r.youtubeClient()
	if err != nil {
		return nil, err
	}

	extractor, err := setlist.NewExtractor(r.config.Setlist.NoisePatterns)
	if err != nil {
		return nil, err
	}

	return tasks.NewEnrichmentEngine(tasks.EngineOpts{
		Comments:       yt,
		Videos:         yt,
		Extractor:      extractor,
		CommentLimiter: tasks.NewLimiter(shared.Interval(r.config.Setlist.RequestIntervalMS)),
		MaxComments:    r.config.Setlist.MaxComments,
		Logger:         r.logger,
	}), nil
}

func (r *Runner) classifier() (*tagging.Classifier, error) {
	loc, err := r.config.Location()
	if err != nil {
		return nil, err
	}

	rules, err := tagging.RulesFromConfig(tagging.DefaultRules(), r.config.Tagging.Rules)
	if err != nil {
		return nil, err
	}
	return tagging.NewClassifier(rules, loc), nil
}

func (r *Runner) resolver(ctx context.Context) (*artist.Resolver, error) {
	searcher, err := r.catalogSearcher(ctx)
	if err != nil {
		return nil, err
	}

	limiter := tasks.NewLimiter(shared.Interval(r.config.Artist.RequestIntervalMS))
	resolver := artist.NewResolver(tasks.LimitSearcher(searcher, limiter), artist.OptionsFromConfig(r.config, r.logger))
	resolver.Now = r.now
	return resolver, nil
}

// withProgress runs fn with a progress channel and prints every update before returning.
func (r *Runner) withProgress(quiet bool, fn func(progress chan<- tasks.ProgressUpdate) error) error {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progressCh {
			if quiet {
				continue
			}
			r.writePlain("%s\n", r.palette.Progress(update.Phase.String(), update.Step, update.Total, update.Message, update.Err))
		}
	}()

	err := fn(progressCh)
	close(progressCh)
	<-done
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", r.palette.Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}
