package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
)

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(context.Background(), shared.SpotifyConfig{
				ClientID:     "test_client_id",
				ClientSecret: "test_client_secret",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.baseURL != spotifyBaseURL {
				t.Errorf("expected base URL %s, got %s", spotifyBaseURL, srv.baseURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(context.Background(), shared.SpotifyConfig{ClientSecret: "secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(context.Background(), shared.SpotifyConfig{ClientID: "id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("SearchTracks", func(t *testing.T) {
		response := map[string]any{
			"tracks": map[string]any{
				"items": []map[string]any{
					{
						"id":         "t1",
						"name":       "キセキ結び",
						"popularity": 42,
						"artists":    []map[string]any{{"id": "a1", "name": "白銀ノエル"}},
						"album":      map[string]any{"id": "al1", "name": "Single", "album_type": "single", "release_date": "2022-08-01"},
					},
					{
						"id":         "t2",
						"name":       "キセキ結び (Cover)",
						"popularity": 10,
						"artists":    []map[string]any{{"name": "Someone"}, {"name": "Another"}},
						"album":      map[string]any{"album_type": "compilation", "release_date": ""},
					},
				},
			},
		}

		var (
			mu       sync.Mutex
			gotQuery map[string]string
		)
		query := func(key string) string {
			mu.Lock()
			defer mu.Unlock()
			return gotQuery[key]
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search" {
				t.Errorf("expected path /search, got %s", r.URL.Path)
			}
			q := r.URL.Query()
			mu.Lock()
			gotQuery = map[string]string{
				"q":      q.Get("q"),
				"type":   q.Get("type"),
				"limit":  q.Get("limit"),
				"market": q.Get("market"),
			}
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		srv := NewSpotifyServiceWithClient(server.Client(), server.URL)

		t.Run("maps tracks to candidates", func(t *testing.T) {
			candidates, err := srv.SearchTracks(context.Background(), "キセキ結び", "JP", 20)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			want := map[string]string{"q": "キセキ結び", "type": "track", "limit": "20", "market": "JP"}
			for k, v := range want {
				if got := query(k); got != v {
					t.Errorf("expected %s=%q, got %q", k, v, got)
				}
			}

			if len(candidates) != 2 {
				t.Fatalf("expected 2 candidates, got %d", len(candidates))
			}

			first := candidates[0]
			if first.TrackName != "キセキ結び" || first.JoinedArtists() != "白銀ノエル" {
				t.Errorf("unexpected first candidate: %+v", first)
			}
			if first.Popularity != 42 || first.AlbumType != models.AlbumTypeSingle {
				t.Errorf("unexpected popularity or album type: %+v", first)
			}
			if first.ReleaseYear == nil || *first.ReleaseYear != 2022 {
				t.Errorf("expected release year 2022, got %v", first.ReleaseYear)
			}

			second := candidates[1]
			if second.JoinedArtists() != "Someone, Another" {
				t.Errorf("expected joined artists, got %q", second.JoinedArtists())
			}
			if second.ReleaseYear != nil {
				t.Errorf("expected nil release year, got %d", *second.ReleaseYear)
			}
		})

		t.Run("omits market when unrestricted", func(t *testing.T) {
			if _, err := srv.SearchTracks(context.Background(), "song", "", 20); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := query("market"); got != "" {
				t.Errorf("expected no market, got %q", got)
			}
		})

		t.Run("clamps limit", func(t *testing.T) {
			if _, err := srv.SearchTracks(context.Background(), "song", "JP", 500); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := query("limit"); got != "50" {
				t.Errorf("expected limit 50, got %s", got)
			}
		})

		t.Run("rejects empty query", func(t *testing.T) {
			_, err := srv.SearchTracks(context.Background(), "  ", "JP", 20)
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("Errors", func(t *testing.T) {
		tests := []struct {
			name   string
			status int
			want   error
		}{
			{"unauthorized", http.StatusUnauthorized, shared.ErrAuthFailed},
			{"rate limited", http.StatusTooManyRequests, shared.ErrRateLimited},
			{"server error", http.StatusBadGateway, shared.ErrServiceUnavailable},
			{"bad request", http.StatusBadRequest, shared.ErrAPIRequest},
			{"not found", http.StatusNotFound, shared.ErrAPIRequest},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					w.Write([]byte(`{"error":{"message":"nope"}}`))
				}))
				defer server.Close()

				srv := NewSpotifyServiceWithClient(server.Client(), server.URL)
				_, err := srv.SearchTracks(context.Background(), "song", "JP", 20)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

func TestReleaseYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
		nil  bool
	}{
		{in: "2019-03-01", want: 2019},
		{in: "1998-05", want: 1998},
		{in: "1985", want: 1985},
		{in: "", nil: true},
		{in: "19", nil: true},
		{in: "0000", nil: true},
		{in: "abcd-01-01", nil: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ReleaseYear(tt.in)
			if tt.nil {
				if got != nil {
					t.Errorf("expected nil, got %d", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("expected %d, got %v", tt.want, got)
			}
		})
	}
}
