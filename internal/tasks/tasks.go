package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/setlist"
	"github.com/desertthunder/vtx/internal/shared"
	"github.com/desertthunder/vtx/internal/tagging"
	"golang.org/x/time/rate"
)

// CommentSource returns up to limit comments of a video, most relevant first.
type CommentSource interface {
	Comments(ctx context.Context, videoID string, limit int) ([]models.Comment, error)
}

// VideoSource lists the uploads of a channel.
type VideoSource interface {
	ChannelVideos(ctx context.Context, channelID string, limit int) ([]models.Video, error)
}

// ArtistResolver resolves the artist of a song title. Failures surface as [models.NotFound].
type ArtistResolver interface {
	Resolve(ctx context.Context, title string) models.ResolvedArtist
}

// VideoStore persists video metadata.
type VideoStore interface {
	Upsert(videos ...models.Video) error
}

// SetlistStore persists the setlist chosen for a video.
type SetlistStore interface {
	Replace(videoID string, entries []models.SetlistEntry) error
}

// TagStore persists the tags matched for a video.
type TagStore interface {
	ReplaceVideoTags(videoID string, match models.TagMatch) error
}

// SongStore persists the song catalog.
type SongStore interface {
	EnsureEntries(entries ...models.SetlistEntry) (int, error)
	UpdateArtist(id string, resolved models.ResolvedArtist) error
}

// SyncResult is the outcome of [EnrichmentEngine.SyncVideos].
type SyncResult struct {
	ChannelID string
	Videos    []models.Video
	Stored    int
}

// SetlistResult is the outcome for one video.
type SetlistResult struct {
	Video   models.Video
	Setlist models.ChosenSetlist
	Err     error
}

// SetlistRunResult is the outcome of [EnrichmentEngine.ExtractSetlists].
type SetlistRunResult struct {
	Results     []SetlistResult
	WithSetlist int
	Empty       int
	Failed      int
	SongsAdded  int
}

// TagResult is the outcome for one video.
type TagResult struct {
	Video models.Video
	Tags  models.TagMatch
	Err   error
}

// TagRunResult is the outcome of [EnrichmentEngine.ClassifyTags].
type TagRunResult struct {
	Results  []TagResult
	Tagged   int
	Untagged int
	Failed   int
}

// ArtistResult is the outcome for one song.
type ArtistResult struct {
	Song     models.Song
	Resolved models.ResolvedArtist
	Err      error
}

// ArtistRunResult is the outcome of [EnrichmentEngine.ResolveArtists].
type ArtistRunResult struct {
	Results  []ArtistResult
	Updated  int
	NotFound int
	Failed   int
}

// EngineOpts configures an [EnrichmentEngine]. Components left nil make the matching operation fail
// with [shared.ErrServiceUnavailable].
type EngineOpts struct {
	Comments       CommentSource
	Videos         VideoSource
	Extractor      *setlist.Extractor
	Classifier     *tagging.Classifier
	Resolver       ArtistResolver
	CommentLimiter *rate.Limiter
	MaxComments    int
	Logger         *log.Logger
}

// EnrichmentEngine runs the enrichment operations over batches of videos and songs.
type EnrichmentEngine struct {
	comments       CommentSource
	videos         VideoSource
	extractor      *setlist.Extractor
	classifier     *tagging.Classifier
	resolver       ArtistResolver
	commentLimiter *rate.Limiter
	maxComments    int
	logger         *log.Logger
}

// NewEnrichmentEngine creates an engine from opts.
func NewEnrichmentEngine(opts EngineOpts) *EnrichmentEngine {
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	if opts.CommentLimiter == nil {
		opts.CommentLimiter = NewLimiter(0)
	}
	if opts.MaxComments <= 0 {
		opts.MaxComments = 100
	}

	return &EnrichmentEngine{
		comments:       opts.Comments,
		videos:         opts.Videos,
		extractor:      opts.Extractor,
		classifier:     opts.Classifier,
		resolver:       opts.Resolver,
		commentLimiter: opts.CommentLimiter,
		maxComments:    opts.MaxComments,
		logger:         shared.WithLogger(opts.Logger, "component", "tasks"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *EnrichmentEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// SyncVideos fetches up to limit uploads of a channel and stores them. A limit of zero or less fetches all.
func (e *EnrichmentEngine) SyncVideos(ctx context.Context, progress chan<- ProgressUpdate, channelID string, limit int, store VideoStore) (*SyncResult, error) {
	if e.videos == nil {
		return nil, fmt.Errorf("%w: video source not initialized", shared.ErrServiceUnavailable)
	}
	if channelID == "" {
		return nil, fmt.Errorf("%w: channel id", shared.ErrMissingArgument)
	}

	e.sendProgress(progress, fetchVideosUpdate(channelID))
	videos, err := e.videos.ChannelVideos(ctx, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel videos: %w", err)
	}

	result := &SyncResult{ChannelID: channelID, Videos: videos}
	if store == nil || len(videos) == 0 {
		return result, nil
	}

	e.sendProgress(progress, storeVideosUpdate(len(videos)))
	if err := store.Upsert(videos...); err != nil {
		return result, fmt.Errorf("failed to store videos: %w", err)
	}
	result.Stored = len(videos)

	e.logger.Info("synced videos", "channel", channelID, "count", len(videos))
	return result, nil
}

// ExtractSetlists picks the best comment setlist of every video and stores it.
//
// Videos without a qualifying comment keep their previous setlist. Songs of the stored entries are
// added to the song catalog when songs is non-nil, keeping any artist the comment names.
func (e *EnrichmentEngine) ExtractSetlists(ctx context.Context, progress chan<- ProgressUpdate, videos []models.Video, store SetlistStore, songs SongStore) (*SetlistRunResult, error) {
	if e.comments == nil || e.extractor == nil {
		return nil, fmt.Errorf("%w: comment source or extractor not initialized", shared.ErrServiceUnavailable)
	}

	result := &SetlistRunResult{Results: make([]SetlistResult, 0, len(videos))}
	for i, v := range videos {
		if err := e.commentLimiter.Wait(ctx); err != nil {
			return result, err
		}

		res := e.extractOne(ctx, v, store, songs, result)
		result.Results = append(result.Results, res)

		switch {
		case res.Err != nil:
			result.Failed++
			e.logger.Warn("setlist extraction failed", "video", v.ID, "error", res.Err)
		case res.Setlist.IsEmpty():
			result.Empty++
		default:
			result.WithSetlist++
		}
		e.sendProgress(progress, setlistUpdate(i+1, len(videos), v.Title, len(res.Setlist.Entries), res.Err))
	}

	return result, ctx.Err()
}

func (e *EnrichmentEngine) extractOne(ctx context.Context, v models.Video, store SetlistStore, songs SongStore, run *SetlistRunResult) SetlistResult {
	res := SetlistResult{Video: v}

	comments, err := e.comments.Comments(ctx, v.ID, e.maxComments)
	if err != nil {
		res.Err = err
		return res
	}

	res.Setlist = e.extractor.Choose(comments)
	if res.Setlist.IsEmpty() {
		return res
	}

	if store != nil {
		if err := store.Replace(v.ID, res.Setlist.Entries); err != nil {
			res.Err = fmt.Errorf("failed to store setlist: %w", err)
			return res
		}
	}

	if songs != nil {
		added, err := songs.EnsureEntries(res.Setlist.Entries...)
		if err != nil {
			res.Err = fmt.Errorf("failed to add songs: %w", err)
			return res
		}
		run.SongsAdded += added
	}

	return res
}

// ClassifyTags matches every video against vocab and stores the tags.
func (e *EnrichmentEngine) ClassifyTags(ctx context.Context, progress chan<- ProgressUpdate, videos []models.Video, vocab models.TagVocabulary, store TagStore) (*TagRunResult, error) {
	if e.classifier == nil {
		return nil, fmt.Errorf("%w: classifier not initialized", shared.ErrServiceUnavailable)
	}

	result := &TagRunResult{Results: make([]TagResult, 0, len(videos))}
	for i, v := range videos {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		res := TagResult{Video: v, Tags: e.classifier.Classify(tagging.InputFromVideo(v), vocab)}
		if store != nil {
			if err := store.ReplaceVideoTags(v.ID, res.Tags); err != nil {
				res.Err = fmt.Errorf("failed to store tags: %w", err)
			}
		}
		result.Results = append(result.Results, res)

		switch {
		case res.Err != nil:
			result.Failed++
			e.logger.Warn("tag storage failed", "video", v.ID, "error", res.Err)
		case len(res.Tags) == 0:
			result.Untagged++
		default:
			result.Tagged++
		}
		e.sendProgress(progress, tagsUpdate(i+1, len(videos), v.Title, res.Tags.Names(vocab), res.Err))
	}

	return result, nil
}

// ResolveArtists resolves the artist of every song and stores the found ones. Songs that resolve to
// nothing keep their placeholder and are reported as not found.
func (e *EnrichmentEngine) ResolveArtists(ctx context.Context, progress chan<- ProgressUpdate, songs []models.Song, store SongStore) (*ArtistRunResult, error) {
	if e.resolver == nil {
		return nil, fmt.Errorf("%w: artist resolver not initialized", shared.ErrServiceUnavailable)
	}

	result := &ArtistRunResult{Results: make([]ArtistResult, 0, len(songs))}
	for i, song := range songs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		res := ArtistResult{Song: song, Resolved: e.resolver.Resolve(ctx, song.Title)}
		if res.Resolved.Found && store != nil {
			if err := store.UpdateArtist(song.ID, res.Resolved); err != nil {
				res.Err = fmt.Errorf("failed to store artist: %w", err)
			}
		}
		result.Results = append(result.Results, res)

		switch {
		case res.Err != nil:
			result.Failed++
			e.logger.Warn("artist update failed", "song", song.Title, "error", res.Err)
		case !res.Resolved.Found:
			result.NotFound++
		default:
			result.Updated++
		}
		e.sendProgress(progress, artistUpdate(i+1, len(songs), song.Title, res.Resolved.ArtistNames, res.Err))
	}

	return result, ctx.Err()
}
