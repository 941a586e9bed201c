package tasks

import (
	"context"
	"time"

	"github.com/desertthunder/vtx/internal/artist"
	"github.com/desertthunder/vtx/internal/models"
	"golang.org/x/time/rate"
)

// NewLimiter returns a limiter allowing one call per interval. A zero interval never waits.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

type limitedSearcher struct {
	searcher artist.Searcher
	limiter  *rate.Limiter
}

// LimitSearcher makes every catalog search wait on limiter first.
func LimitSearcher(s artist.Searcher, limiter *rate.Limiter) artist.Searcher {
	if limiter == nil {
		return s
	}
	return &limitedSearcher{searcher: s, limiter: limiter}
}

func (l *limitedSearcher) SearchTracks(ctx context.Context, query, market string, limit int) ([]models.ArtistCandidate, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.searcher.SearchTracks(ctx, query, market, limit)
}
