// Spotify Web API catalog search.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/search
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	spotifyMaxLimit = 50
)

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AlbumType   string `json:"album_type"`   // album, single, compilation
	ReleaseDate string `json:"release_date"` // YYYY, YYYY-MM or YYYY-MM-DD
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	Popularity int             `json:"popularity"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

// Candidate converts the track into an artist resolution candidate.
func (t SpotifyTrack) Candidate() models.ArtistCandidate {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}

	return models.ArtistCandidate{
		TrackName:   t.Name,
		ArtistNames: names,
		Popularity:  t.Popularity,
		ReleaseYear: ReleaseYear(t.Album.ReleaseDate),
		AlbumType:   models.AlbumType(strings.ToLower(t.Album.AlbumType)),
	}
}

// ReleaseYear extracts the year from a Spotify release date, or nil when it has none.
func ReleaseYear(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return nil
	}
	return &year
}

// SpotifyService searches the Spotify catalog with an app token.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyService creates a catalog client that authenticates with the client credentials grant.
func NewSpotifyService(ctx context.Context, cfg shared.SpotifyConfig) (*SpotifyService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	conf := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyTokenURL,
	}

	client := conf.Client(ctx)
	client.Timeout = defaultTimeout

	return NewSpotifyServiceWithClient(client, spotifyBaseURL), nil
}

// NewSpotifyServiceWithClient creates a catalog client that sends requests through client to baseURL.
//
// The client is expected to attach credentials itself.
func NewSpotifyServiceWithClient(client *http.Client, baseURL string) *SpotifyService {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	return &SpotifyService{baseURL: strings.TrimRight(baseURL, "/"), httpClient: client}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Tracks searches tracks matching query. An empty market searches every market.
func (s *SpotifyService) Tracks(ctx context.Context, query, market string, limit int) ([]SpotifyTrack, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}
	limit = max(1, min(limit, spotifyMaxLimit))

	params := url.Values{
		"q":     {query},
		"type":  {"track"},
		"limit": {strconv.Itoa(limit)},
	}
	if market != "" {
		params.Set("market", market)
	}

	var response spotifySearchResponse
	if err := doJSON(ctx, s.httpClient, spotifyName, s.baseURL+"/search?"+params.Encode(), &response); err != nil {
		return nil, err
	}
	return response.Tracks.Items, nil
}

// SearchTracks searches tracks matching query and converts them into resolution candidates.
func (s *SpotifyService) SearchTracks(ctx context.Context, query, market string, limit int) ([]models.ArtistCandidate, error) {
	tracks, err := s.Tracks(ctx, query, market, limit)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.ArtistCandidate, 0, len(tracks))
	for _, t := range tracks {
		candidates = append(candidates, t.Candidate())
	}
	return candidates, nil
}
