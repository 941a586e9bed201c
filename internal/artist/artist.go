package artist

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
	"golang.org/x/text/width"
)

const (
	DefaultMarket         = "JP"
	DefaultLimit          = 20
	DefaultPriorityArtist = "白銀ノエル"

	maxPartial  = 10
	maxFallback = 5
)

// Searcher looks up tracks in a music catalog. An empty market searches every market.
type Searcher interface {
	SearchTracks(ctx context.Context, query, market string, limit int) ([]models.ArtistCandidate, error)
}

// Options configures a [Resolver]. Zero values fall back to the package defaults, except
// FallbackMarket, where empty means unrestricted.
type Options struct {
	Market         string
	FallbackMarket string
	Limit          int
	PriorityArtist string
	Logger         *log.Logger
}

// OptionsFromConfig maps the [artist] and Spotify config sections onto resolver options.
func OptionsFromConfig(cfg *shared.Config, logger *log.Logger) Options {
	return Options{
		Market:         cfg.Credentials.Spotify.Market,
		FallbackMarket: cfg.Artist.FallbackMarket,
		Limit:          cfg.Artist.SearchLimit,
		PriorityArtist: cfg.Artist.PriorityArtist,
		Logger:         logger,
	}
}

// Resolver picks the most likely original artist for a song title.
//
// A Resolver keeps no state between calls; concurrent use is safe when the Searcher allows it.
type Resolver struct {
	searcher       Searcher
	market         string
	fallbackMarket string
	limit          int
	priorityArtist string
	logger         *log.Logger

	// Now supplies the current year for release-age scoring.
	Now func() time.Time
}

// NewResolver creates a resolver backed by searcher.
func NewResolver(searcher Searcher, opts Options) *Resolver {
	if opts.Market == "" {
		opts.Market = DefaultMarket
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.PriorityArtist == "" {
		opts.PriorityArtist = DefaultPriorityArtist
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	return &Resolver{
		searcher:       searcher,
		market:         opts.Market,
		fallbackMarket: opts.FallbackMarket,
		limit:          opts.Limit,
		priorityArtist: opts.PriorityArtist,
		logger:         shared.WithLogger(opts.Logger, "component", "artist"),
		Now:            time.Now,
	}
}

// Resolve returns the artist for title, or [models.NotFound] when the catalog has nothing usable.
//
// Search failures are logged and treated as an empty result.
func (r *Resolver) Resolve(ctx context.Context, title string) models.ResolvedArtist {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.NotFound
	}

	candidates := r.search(ctx, title, r.market)
	if len(candidates) == 0 && r.fallbackMarket != r.market {
		r.logger.Debug("no results in market, retrying", "title", title, "market", r.market, "fallback", r.fallbackMarket)
		candidates = r.search(ctx, title, r.fallbackMarket)
	}
	if len(candidates) == 0 {
		r.logger.Info("no catalog results", "title", title)
		return models.NotFound
	}

	pool := Pool(title, candidates)
	for i, c := range pool {
		r.logger.Debug("candidate", "rank", i+1, "track", c.TrackName, "artists", c.JoinedArtists(), "popularity", c.Popularity)
	}

	sc := ScoreContext{NormalizedQuery: Normalize(title), CurrentYear: r.Now().Year()}
	best, ok := Select(pool, sc, r.priorityArtist)
	if !ok {
		return models.NotFound
	}

	r.logger.Info("resolved artist", "title", title, "track", best.TrackName, "artists", best.JoinedArtists())
	return models.ResolvedArtist{
		ArtistNames:      best.JoinedArtists(),
		MatchedTrackName: best.TrackName,
		Found:            true,
	}
}

func (r *Resolver) search(ctx context.Context, title, market string) []models.ArtistCandidate {
	candidates, err := r.searcher.SearchTracks(ctx, title, market, r.limit)
	if err != nil {
		r.logger.Warn("catalog search failed", "title", title, "market", market, "error", err)
		return nil
	}
	return candidates
}

// Pool narrows candidates to the ones worth scoring, keeping their search order.
//
// Exact normalized matches win; otherwise up to 10 partial matches; otherwise the first 5 results.
func Pool(query string, candidates []models.ArtistCandidate) []models.ArtistCandidate {
	nq := Normalize(query)
	lq := strings.ToLower(query)

	var exact, partial []models.ArtistCandidate
	for _, c := range candidates {
		nt := Normalize(c.TrackName)
		switch {
		case nt == nq:
			exact = append(exact, c)
		case isPartial(nq, nt, lq, strings.ToLower(c.TrackName)):
			partial = append(partial, c)
		}
	}

	switch {
	case len(exact) > 0:
		return exact
	case len(partial) > 0:
		return partial[:min(len(partial), maxPartial)]
	default:
		return candidates[:min(len(candidates), maxFallback)]
	}
}

func isPartial(nq, nt, lq, lt string) bool {
	if nq != "" && nt != "" && (strings.Contains(nt, nq) || strings.Contains(nq, nt)) {
		return true
	}
	return lq != "" && strings.Contains(lt, lq)
}

// Select returns the priority artist's first candidate in pool if there is one, else the
// highest-scoring candidate. Ties go to the earlier candidate.
func Select(pool []models.ArtistCandidate, sc ScoreContext, priorityArtist string) (models.ArtistCandidate, bool) {
	if len(pool) == 0 {
		return models.ArtistCandidate{}, false
	}

	if priorityArtist != "" {
		for _, c := range pool {
			if strings.Contains(c.JoinedArtists(), priorityArtist) {
				return c, true
			}
		}
	}

	best, bestScore := pool[0], Score(pool[0], sc)
	for _, c := range pool[1:] {
		if s := Score(c, sc); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, true
}

// Normalize prepares a title for comparison: full-width ASCII is folded, letters are lowercased,
// whitespace (including U+3000) and a fixed set of punctuation and brackets are removed.
func Normalize(s string) string {
	return stripRunes(strings.ToLower(width.Fold.String(stripRunes(s))))
}

func stripRunes(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune(strippedRunes, r) {
			return -1
		}
		return r
	}, s)
}

const strippedRunes = "!！?？～〜・（）()「」『』【】"

// ContainsJapanese reports whether s holds any Hiragana, Katakana or Kanji.
func ContainsJapanese(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}
