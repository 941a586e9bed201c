package artist

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/vtx/internal/models"
	tu "github.com/desertthunder/vtx/internal/testing"
)

func year(y int) *int { return &y }

func fixedClock() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

func newResolver(s Searcher) *Resolver {
	r := NewResolver(s, Options{Market: "JP"})
	r.Now = fixedClock
	return r
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("priority artist beats a higher score", func(t *testing.T) {
		s := &tu.MockSearcher{Results: map[string][]models.ArtistCandidate{
			"JP": {
				{TrackName: "キセキ結び", ArtistNames: []string{"Famous"}, Popularity: 90, AlbumType: models.AlbumTypeAlbum, ReleaseYear: year(2001)},
				{TrackName: "キセキ結び", ArtistNames: []string{"Someone", "白銀ノエル"}, Popularity: 0, AlbumType: models.AlbumTypeCompilation},
			},
		}}

		got := newResolver(s).Resolve(ctx, "キセキ結び")
		if !got.Found || got.ArtistNames != "Someone, 白銀ノエル" {
			t.Errorf("expected priority artist, got %+v", got)
		}
		if got.MatchedTrackName != "キセキ結び" {
			t.Errorf("expected matched track name, got %q", got.MatchedTrackName)
		}
	})

	t.Run("priority artist outside the pool is ignored", func(t *testing.T) {
		s := &tu.MockSearcher{Results: map[string][]models.ArtistCandidate{
			"JP": {
				{TrackName: "Song", ArtistNames: []string{"Original"}, Popularity: 10},
				{TrackName: "Other", ArtistNames: []string{"白銀ノエル"}, Popularity: 99},
			},
		}}

		if got := newResolver(s).Resolve(ctx, "Song"); got.ArtistNames != "Original" {
			t.Errorf("expected exact match only, got %+v", got)
		}
	})

	t.Run("highest score wins", func(t *testing.T) {
		s := &tu.MockSearcher{Results: map[string][]models.ArtistCandidate{
			"JP": {
				{TrackName: "Song", ArtistNames: []string{"Newer"}, Popularity: 50, ReleaseYear: year(2024), AlbumType: models.AlbumTypeSingle},
				{TrackName: "Song", ArtistNames: []string{"Older"}, Popularity: 40, ReleaseYear: year(2000), AlbumType: models.AlbumTypeSingle},
			},
		}}

		if got := newResolver(s).Resolve(ctx, "Song"); got.ArtistNames != "Older" {
			t.Errorf("expected the older release to win, got %+v", got)
		}
	})

	t.Run("falls back to unrestricted search", func(t *testing.T) {
		s := &tu.MockSearcher{Results: map[string][]models.ArtistCandidate{
			"": {{TrackName: "Song", ArtistNames: []string{"Anywhere"}}},
		}}

		got := newResolver(s).Resolve(ctx, "Song")
		if got.ArtistNames != "Anywhere" {
			t.Errorf("expected fallback result, got %+v", got)
		}

		calls := s.Calls()
		if len(calls) != 2 {
			t.Fatalf("expected 2 searches, got %d", len(calls))
		}
		if calls[0].Market != "JP" || calls[1].Market != "" || calls[0].Limit != DefaultLimit {
			t.Errorf("unexpected calls: %+v", calls)
		}
	})

	t.Run("search errors are treated as empty", func(t *testing.T) {
		s := &tu.MockSearcher{
			Errors:  map[string]error{"JP": errors.New("boom")},
			Results: map[string][]models.ArtistCandidate{"": {{TrackName: "Song", ArtistNames: []string{"Recovered"}}}},
		}

		if got := newResolver(s).Resolve(ctx, "Song"); got.ArtistNames != "Recovered" {
			t.Errorf("expected fallback after error, got %+v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		s := &tu.MockSearcher{Errors: map[string]error{"JP": errors.New("boom"), "": errors.New("boom")}}

		if got := newResolver(s).Resolve(ctx, "Song"); got != models.NotFound {
			t.Errorf("expected NotFound, got %+v", got)
		}
	})

	t.Run("same fallback market searches once", func(t *testing.T) {
		s := &tu.MockSearcher{}
		r := NewResolver(s, Options{Market: "JP", FallbackMarket: "JP"})

		if got := r.Resolve(ctx, "Song"); got.Found {
			t.Errorf("expected NotFound, got %+v", got)
		}
		if n := len(s.Calls()); n != 1 {
			t.Errorf("expected 1 search, got %d", n)
		}
	})

	t.Run("empty title", func(t *testing.T) {
		s := &tu.MockSearcher{}
		if got := newResolver(s).Resolve(ctx, "   "); got.Found {
			t.Errorf("expected NotFound, got %+v", got)
		}
		if n := len(s.Calls()); n != 0 {
			t.Errorf("expected no searches, got %d", n)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		s := &tu.MockSearcher{Results: map[string][]models.ArtistCandidate{
			"JP": {
				{TrackName: "Song (Remix)", ArtistNames: []string{"A"}, Popularity: 70},
				{TrackName: "Song", ArtistNames: []string{"B"}, Popularity: 30},
				{TrackName: "Song", ArtistNames: []string{"C"}, Popularity: 30},
			},
		}}

		r := newResolver(s)
		first := r.Resolve(ctx, "Song")
		for range 5 {
			if got := r.Resolve(ctx, "Song"); got != first {
				t.Fatalf("expected %+v, got %+v", first, got)
			}
		}
		if first.ArtistNames != "B" {
			t.Errorf("expected first of the tied candidates, got %+v", first)
		}
	})
}

func TestPool(t *testing.T) {
	t.Run("exact matches win", func(t *testing.T) {
		candidates := []models.ArtistCandidate{
			{TrackName: "Song Extended"},
			{TrackName: "ＳＯＮＧ！"},
			{TrackName: "song"},
		}
		pool := Pool("Song", candidates)
		if len(pool) != 2 || pool[0].TrackName != "ＳＯＮＧ！" || pool[1].TrackName != "song" {
			t.Errorf("unexpected pool: %+v", pool)
		}
	})

	t.Run("partial matches are capped", func(t *testing.T) {
		var candidates []models.ArtistCandidate
		for i := range 12 {
			candidates = append(candidates, models.ArtistCandidate{TrackName: fmt.Sprintf("Song part %d", i)})
		}
		pool := Pool("Song", candidates)
		if len(pool) != 10 {
			t.Fatalf("expected 10 candidates, got %d", len(pool))
		}
		if pool[0].TrackName != "Song part 0" {
			t.Errorf("expected search order kept, got %q", pool[0].TrackName)
		}
	})

	t.Run("query containing the track is partial", func(t *testing.T) {
		pool := Pool("Song Extended Mix", []models.ArtistCandidate{{TrackName: "Other"}, {TrackName: "Song"}})
		if len(pool) != 1 || pool[0].TrackName != "Song" {
			t.Errorf("unexpected pool: %+v", pool)
		}
	})

	t.Run("fallback keeps the first five", func(t *testing.T) {
		var candidates []models.ArtistCandidate
		for i := range 7 {
			candidates = append(candidates, models.ArtistCandidate{TrackName: fmt.Sprintf("Unrelated %d", i)})
		}
		pool := Pool("Song", candidates)
		if len(pool) != 5 || pool[4].TrackName != "Unrelated 4" {
			t.Errorf("unexpected pool: %+v", pool)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if pool := Pool("Song", nil); len(pool) != 0 {
			t.Errorf("expected empty pool, got %+v", pool)
		}
	})
}

func TestSelect(t *testing.T) {
	sc := ScoreContext{NormalizedQuery: "song", CurrentYear: 2025}

	t.Run("empty pool", func(t *testing.T) {
		if _, ok := Select(nil, sc, "白銀ノエル"); ok {
			t.Error("expected no selection")
		}
	})

	t.Run("no priority artist configured", func(t *testing.T) {
		pool := []models.ArtistCandidate{
			{TrackName: "Song", ArtistNames: []string{"白銀ノエル"}, Popularity: 1},
			{TrackName: "Song", ArtistNames: []string{"Popular"}, Popularity: 80},
		}
		got, _ := Select(pool, sc, "")
		if got.PrimaryArtist() != "Popular" {
			t.Errorf("expected score-based pick, got %+v", got)
		}
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "helloworld"},
		{"Ｈｅｌｌｏ　Ｗｏｒｌｄ！", "helloworld"},
		{"「キセキ結び」", "キセキ結び"},
		{"【歌ってみた】(Full)", "歌ってみたfull"},
		{"A・B～C〜D", "abcd"},
		{"what?？", "what"},
		{"  \t\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestContainsJapanese(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"白銀ノエル", true},
		{"ひらがな", true},
		{"カタカナ", true},
		{"ｶﾀｶﾅ", true},
		{"YOASOBI", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ContainsJapanese(tt.in); got != tt.want {
			t.Errorf("ContainsJapanese(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
