package tasks

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/setlist"
	"github.com/desertthunder/vtx/internal/shared"
	"github.com/desertthunder/vtx/internal/tagging"
	tu "github.com/desertthunder/vtx/internal/testing"
)

type memoryStore struct {
	videos   []models.Video
	setlists map[string][]models.SetlistEntry
	tags     map[string]models.TagMatch
	songs    map[string]string
	artists  map[string]models.ResolvedArtist
	err      error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		setlists: map[string][]models.SetlistEntry{},
		tags:     map[string]models.TagMatch{},
		songs:    map[string]string{},
		artists:  map[string]models.ResolvedArtist{},
	}
}

func (m *memoryStore) Upsert(videos ...models.Video) error {
	if m.err != nil {
		return m.err
	}
	m.videos = append(m.videos, videos...)
	return nil
}

func (m *memoryStore) Replace(videoID string, entries []models.SetlistEntry) error {
	if m.err != nil {
		return m.err
	}
	m.setlists[videoID] = entries
	return nil
}

func (m *memoryStore) ReplaceVideoTags(videoID string, match models.TagMatch) error {
	if m.err != nil {
		return m.err
	}
	m.tags[videoID] = match
	return nil
}

func (m *memoryStore) EnsureEntries(entries ...models.SetlistEntry) (int, error) {
	added := 0
	for _, entry := range entries {
		if _, ok := m.songs[entry.SongTitle]; ok {
			continue
		}
		artist := entry.Artist
		if artist == "" {
			artist = models.PendingArtist
		}
		m.songs[entry.SongTitle] = artist
		added++
	}
	return added, nil
}

func (m *memoryStore) UpdateArtist(id string, resolved models.ResolvedArtist) error {
	if m.err != nil {
		return m.err
	}
	m.artists[id] = resolved
	return nil
}

type stubResolver map[string]models.ResolvedArtist

func (s stubResolver) Resolve(ctx context.Context, title string) models.ResolvedArtist {
	return s[title]
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestExtractSetlists(t *testing.T) {
	videos := []models.Video{
		{ID: "v1", Title: "【歌枠】one"},
		{ID: "v2", Title: "雑談"},
		{ID: "v3", Title: "broken"},
	}

	newSource := func() *tu.MockCommentSource {
		src := tu.NewMockCommentSource(map[string][]models.Comment{
			"v1": {
				{Text: "great stream", LikeCount: 50},
				{Text: "00:00 Song A / Artist A<br>01:30 Song B", LikeCount: 3},
			},
			"v2": {{Text: "おつかれ！", LikeCount: 1}},
		})
		src.Errors["v3"] = shared.ErrVideoNotFound
		return src
	}

	t.Run("stores setlists and seeds songs", func(t *testing.T) {
		src := newSource()
		engine := NewEnrichmentEngine(EngineOpts{Comments: src, Extractor: setlist.Default(), MaxComments: 20})
		store := newMemoryStore()
		progress := make(chan ProgressUpdate, 10)

		result, err := engine.ExtractSetlists(context.Background(), progress, videos, store, store)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.WithSetlist != 1 || result.Empty != 1 || result.Failed != 1 {
			t.Errorf("unexpected counts: %+v", result)
		}
		if result.SongsAdded != 2 {
			t.Errorf("expected 2 songs added, got %d", result.SongsAdded)
		}
		wantSongs := map[string]string{"Song A": "Artist A", "Song B": models.PendingArtist}
		if !reflect.DeepEqual(store.songs, wantSongs) {
			t.Errorf("expected songs %v, got %v", wantSongs, store.songs)
		}
		if !errors.Is(result.Results[2].Err, shared.ErrVideoNotFound) {
			t.Errorf("expected recorded failure, got %v", result.Results[2].Err)
		}

		want := []models.SetlistEntry{
			{SongTitle: "Song A", Artist: "Artist A", StartSeconds: 0},
			{SongTitle: "Song B", StartSeconds: 90},
		}
		if !reflect.DeepEqual(store.setlists["v1"], want) {
			t.Errorf("expected %+v, got %+v", want, store.setlists["v1"])
		}
		if _, ok := store.setlists["v2"]; ok {
			t.Error("empty setlist should not be stored")
		}

		if !reflect.DeepEqual(src.Calls(), []string{"v1", "v2", "v3"}) {
			t.Errorf("unexpected comment fetches: %v", src.Calls())
		}

		updates := drain(progress)
		if len(updates) != 3 {
			t.Fatalf("expected 3 updates, got %d", len(updates))
		}
		if updates[0].Phase != ExtractSetlist || updates[0].Step != 1 || updates[0].Total != 3 {
			t.Errorf("unexpected first update: %+v", updates[0])
		}
		if updates[2].Err == nil || !strings.Contains(updates[2].Message, "broken") {
			t.Errorf("expected failure update, got %+v", updates[2])
		}
	})

	t.Run("dry run", func(t *testing.T) {
		engine := NewEnrichmentEngine(EngineOpts{Comments: newSource(), Extractor: setlist.Default()})

		result, err := engine.ExtractSetlists(context.Background(), nil, videos, nil, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.WithSetlist != 1 || len(result.Results[0].Setlist.Entries) != 2 {
			t.Errorf("expected setlist without storage, got %+v", result.Results[0])
		}
	})

	t.Run("store failure is recorded", func(t *testing.T) {
		engine := NewEnrichmentEngine(EngineOpts{Comments: newSource(), Extractor: setlist.Default()})
		store := newMemoryStore()
		store.err = errors.New("disk full")

		result, err := engine.ExtractSetlists(context.Background(), nil, videos[:1], store, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Failed != 1 {
			t.Errorf("expected 1 failure, got %+v", result)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := NewEnrichmentEngine(EngineOpts{
			Comments:       newSource(),
			Extractor:      setlist.Default(),
			CommentLimiter: NewLimiter(time.Hour),
		})

		result, err := engine.ExtractSetlists(ctx, nil, videos, nil, nil)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(result.Results) != 0 {
			t.Errorf("expected no results, got %d", len(result.Results))
		}
	})

	t.Run("not initialized", func(t *testing.T) {
		engine := NewEnrichmentEngine(EngineOpts{})
		if _, err := engine.ExtractSetlists(context.Background(), nil, videos, nil, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestClassifyTags(t *testing.T) {
	vocab := models.TagVocabulary{2: "ゲーム", 3: "歌枠", 42: "Minecraft"}
	videos := []models.Video{
		{ID: "v1", Title: "Minecraft #3"},
		{ID: "v2", Title: "【歌枠】"},
		{ID: "v3", Title: "のんびり"},
	}

	t.Run("stores matches", func(t *testing.T) {
		engine := NewEnrichmentEngine(EngineOpts{Classifier: tagging.NewClassifier(tagging.DefaultRules(), time.UTC)})
		store := newMemoryStore()
		progress := make(chan ProgressUpdate, 10)

		result, err := engine.ClassifyTags(context.Background(), progress, videos, vocab, store)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Tagged != 2 || result.Untagged != 1 || result.Failed != 0 {
			t.Errorf("unexpected counts: %+v", result)
		}
		if !reflect.DeepEqual(store.tags["v1"].IDs(), []int{2, 42}) {
			t.Errorf("expected [2 42], got %v", store.tags["v1"].IDs())
		}
		if len(store.tags["v3"]) != 0 {
			t.Errorf("expected v3 cleared, got %v", store.tags["v3"].IDs())
		}

		updates := drain(progress)
		if len(updates) != 3 || updates[1].Phase != ClassifyTags {
			t.Errorf("unexpected updates: %+v", updates)
		}
	})

	t.Run("store failure is recorded", func(t *testing.T) {
		engine := NewEnrichmentEngine(EngineOpts{Classifier: tagging.NewClassifier(nil, nil)})
		store := newMemoryStore()
		store.err = errors.New("locked")

		result, err := engine.ClassifyTags(context.Background(), nil, videos, vocab, store)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Failed != 3 {
			t.Errorf("expected 3 failures, got %+v", result)
		}
	})

	t.Run("not initialized", func(t *testing.T) {
		engine := NewEnrichmentEngine(EngineOpts{})
		if _, err := engine.ClassifyTags(context.Background(), nil, videos, vocab, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestResolveArtists(t *testing.T) {
	songs := []models.Song{
		{ID: "s1", Title: "Song A", Artist: models.PendingArtist},
		{ID: "s2", Title: "Unknown", Artist: models.PendingArtist},
	}
	resolver := stubResolver{"Song A": {ArtistNames: "Artist A", MatchedTrackName: "Song A", Found: true}}

	t.Run("updates found songs", func(t *testing.T) {
		engine := NewEnrichmentEngine(EngineOpts{Resolver: resolver})
		store := newMemoryStore()

		result, err := engine.ResolveArtists(context.Background(), nil, songs, store)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Updated != 1 || result.NotFound != 1 {
			t.Errorf("unexpected counts: %+v", result)
		}
		if store.artists["s1"].ArtistNames != "Artist A" {
			t.Errorf("expected s1 updated, got %+v", store.artists)
		}
		if _, ok := store.artists["s2"]; ok {
			t.Error("not found songs should not be updated")
		}
	})

	t.Run("store failure is recorded", func(t *testing.T) {
		engine := NewEnrichmentEngine(EngineOpts{Resolver: resolver})
		store := newMemoryStore()
		store.err = errors.New("locked")

		result, err := engine.ResolveArtists(context.Background(), nil, songs, store)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Failed != 1 || result.NotFound != 1 {
			t.Errorf("unexpected counts: %+v", result)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := NewEnrichmentEngine(EngineOpts{Resolver: resolver})
		if _, err := engine.ResolveArtists(ctx, nil, songs, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestSyncVideos(t *testing.T) {
	source := &tu.MockVideoSource{Videos: []models.Video{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}}

	t.Run("stores videos", func(t *testing.T) {
		engine := NewEnrichmentEngine(EngineOpts{Videos: source})
		store := newMemoryStore()
		progress := make(chan ProgressUpdate, 5)

		result, err := engine.SyncVideos(context.Background(), progress, "chan", 0, store)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Stored != 2 || len(store.videos) != 2 {
			t.Errorf("expected 2 stored videos, got %+v", result)
		}

		updates := drain(progress)
		if len(updates) != 2 || updates[0].Phase != FetchVideos || updates[1].Phase != StoreVideos {
			t.Errorf("unexpected updates: %+v", updates)
		}
	})

	t.Run("limit", func(t *testing.T) {
		engine := NewEnrichmentEngine(EngineOpts{Videos: source})
		result, err := engine.SyncVideos(context.Background(), nil, "chan", 1, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Videos) != 1 || result.Stored != 0 {
			t.Errorf("expected one unstored video, got %+v", result)
		}
	})

	t.Run("errors", func(t *testing.T) {
		engine := NewEnrichmentEngine(EngineOpts{Videos: &tu.MockVideoSource{Err: shared.ErrRateLimited}})
		if _, err := engine.SyncVideos(context.Background(), nil, "chan", 0, nil); !errors.Is(err, shared.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
		if _, err := engine.SyncVideos(context.Background(), nil, "", 0, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if _, err := NewEnrichmentEngine(EngineOpts{}).SyncVideos(context.Background(), nil, "chan", 0, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestSendProgressDoesNotBlock(t *testing.T) {
	engine := NewEnrichmentEngine(EngineOpts{})
	progress := make(chan ProgressUpdate, 1)

	engine.sendProgress(progress, ProgressUpdate{Step: 1})
	engine.sendProgress(progress, ProgressUpdate{Step: 2})
	engine.sendProgress(nil, ProgressUpdate{Step: 3})

	if got := drain(progress); len(got) != 1 || got[0].Step != 1 {
		t.Errorf("expected only the first update, got %+v", got)
	}
}

func TestLimitSearcher(t *testing.T) {
	s := &tu.MockSearcher{Results: map[string][]models.ArtistCandidate{"JP": {{TrackName: "Song"}}}}

	t.Run("passes through", func(t *testing.T) {
		limited := LimitSearcher(s, NewLimiter(0))
		got, err := limited.SearchTracks(context.Background(), "Song", "JP", 20)
		if err != nil || len(got) != 1 {
			t.Errorf("expected one candidate, got %v (err %v)", got, err)
		}
	})

	t.Run("nil limiter", func(t *testing.T) {
		if LimitSearcher(s, nil) != s {
			t.Error("expected the searcher unchanged")
		}
	})

	t.Run("cancelled wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		limited := LimitSearcher(s, NewLimiter(time.Hour))
		if _, err := limited.SearchTracks(ctx, "Song", "JP", 20); err == nil {
			t.Error("expected an error from a cancelled wait")
		}
	})
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		FetchVideos:    "fetch_videos",
		StoreVideos:    "store_videos",
		ExtractSetlist: "extract_setlist",
		ClassifyTags:   "classify_tags",
		ResolveArtist:  "resolve_artist",
		Phase(99):      "",
	}
	for p, want := range tests {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}
