// YouTube Data API v3 client.
//
// Response types based on https://developers.google.com/youtube/v3/docs
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
)

const (
	youtubeBaseURL = "https://www.googleapis.com/youtube/v3"

	maxCommentResults  = 100
	maxPlaylistResults = 50
	maxVideoIDs        = 50
)

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

type youtubeCommentSnippet struct {
	TextDisplay       string `json:"textDisplay"`
	AuthorDisplayName string `json:"authorDisplayName"`
	LikeCount         int    `json:"likeCount"`
}

// YouTubeCommentThread is an item of a commentThreads.list response.
type YouTubeCommentThread struct {
	ID      string `json:"id"`
	Snippet struct {
		TopLevelComment struct {
			Snippet youtubeCommentSnippet `json:"snippet"`
		} `json:"topLevelComment"`
	} `json:"snippet"`
}

// YouTubeVideo is an item of a videos.list response.
type YouTubeVideo struct {
	ID      string `json:"id"`
	Snippet struct {
		ChannelID   string `json:"channelId"`
		Title       string `json:"title"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"` // ISO 8601, e.g. PT1H30M15S
	} `json:"contentDetails"`
	LiveStreamingDetails *struct {
		ActualStartTime    string `json:"actualStartTime"`
		ScheduledStartTime string `json:"scheduledStartTime"`
	} `json:"liveStreamingDetails"`
}

type youtubePlaylistItem struct {
	ContentDetails struct {
		VideoID string `json:"videoId"`
	} `json:"contentDetails"`
}

type youtubeListResponse[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

type youtubeChannel struct {
	ContentDetails struct {
		RelatedPlaylists struct {
			Uploads string `json:"uploads"`
		} `json:"relatedPlaylists"`
	} `json:"contentDetails"`
}

// YouTubeService reads public channel data from the YouTube Data API with an API key.
type YouTubeService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewYouTubeService creates a YouTube Data API client.
func NewYouTubeService(cfg shared.YouTubeConfig) (*YouTubeService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: youtube api_key is required", shared.ErrMissingCredentials)
	}
	return NewYouTubeServiceWithBaseURL(cfg.APIKey, youtubeBaseURL, &http.Client{Timeout: defaultTimeout}), nil
}

// NewYouTubeServiceWithBaseURL creates a client against baseURL, for tests and proxies.
func NewYouTubeServiceWithBaseURL(apiKey, baseURL string, client *http.Client) *YouTubeService {
	if client == nil {
		client = http.DefaultClient
	}
	return &YouTubeService{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), httpClient: client}
}

func (y *YouTubeService) Name() string {
	return "YouTube"
}

func (y *YouTubeService) get(ctx context.Context, resource string, params url.Values, result any) error {
	params.Set("key", y.apiKey)
	return doJSON(ctx, y.httpClient, youtubeName, y.baseURL+"/"+resource+"?"+params.Encode(), result)
}

// Comments returns up to limit top-level comments of a video ordered by relevance.
//
// Comment text is returned as rendered HTML.
func (y *YouTubeService) Comments(ctx context.Context, videoID string, limit int) ([]models.Comment, error) {
	if videoID == "" {
		return nil, fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}
	if limit <= 0 || limit > maxCommentResults {
		limit = maxCommentResults
	}

	params := url.Values{
		"part":       {"snippet"},
		"videoId":    {videoID},
		"order":      {"relevance"},
		"maxResults": {strconv.Itoa(limit)},
		"textFormat": {"html"},
	}

	var response youtubeListResponse[YouTubeCommentThread]
	if err := y.get(ctx, "commentThreads", params, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch comments for %s: %w", videoID, err)
	}

	comments := make([]models.Comment, 0, len(response.Items))
	for _, item := range response.Items {
		s := item.Snippet.TopLevelComment.Snippet
		comments = append(comments, models.Comment{
			Text:      s.TextDisplay,
			Author:    s.AuthorDisplayName,
			LikeCount: max(s.LikeCount, 0),
		})
	}
	return comments, nil
}

// Videos fetches metadata for the given ids in batches of 50. Unknown ids are skipped.
func (y *YouTubeService) Videos(ctx context.Context, ids []string) ([]models.Video, error) {
	videos := make([]models.Video, 0, len(ids))

	for start := 0; start < len(ids); start += maxVideoIDs {
		batch := ids[start:min(start+maxVideoIDs, len(ids))]
		params := url.Values{
			"part": {"snippet,contentDetails,liveStreamingDetails"},
			"id":   {strings.Join(batch, ",")},
		}

		var response youtubeListResponse[YouTubeVideo]
		if err := y.get(ctx, "videos", params, &response); err != nil {
			return nil, fmt.Errorf("failed to fetch video details: %w", err)
		}

		for _, item := range response.Items {
			videos = append(videos, item.Video())
		}
	}

	return videos, nil
}

// Video fetches metadata for a single video.
func (y *YouTubeService) Video(ctx context.Context, id string) (*models.Video, error) {
	videos, err := y.Videos(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrVideoNotFound, id)
	}
	return &videos[0], nil
}

// UploadsPlaylist returns the id of the playlist holding every upload of a channel.
func (y *YouTubeService) UploadsPlaylist(ctx context.Context, channelID string) (string, error) {
	if channelID == "" {
		return "", fmt.Errorf("%w: channel id", shared.ErrMissingArgument)
	}

	params := url.Values{"part": {"contentDetails"}, "id": {channelID}}

	var response youtubeListResponse[youtubeChannel]
	if err := y.get(ctx, "channels", params, &response); err != nil {
		return "", fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
	}
	if len(response.Items) == 0 || response.Items[0].ContentDetails.RelatedPlaylists.Uploads == "" {
		return "", fmt.Errorf("%w: channel %s has no uploads playlist", shared.ErrAPIRequest, channelID)
	}
	return response.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

// ChannelVideoIDs pages through a channel's uploads, newest first. A limit of zero or less reads all of them.
func (y *YouTubeService) ChannelVideoIDs(ctx context.Context, channelID string, limit int) ([]string, error) {
	playlistID, err := y.UploadsPlaylist(ctx, channelID)
	if err != nil {
		return nil, err
	}

	var ids []string
	pageToken := ""
	for {
		params := url.Values{
			"part":       {"contentDetails"},
			"playlistId": {playlistID},
			"maxResults": {strconv.Itoa(maxPlaylistResults)},
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var response youtubeListResponse[youtubePlaylistItem]
		if err := y.get(ctx, "playlistItems", params, &response); err != nil {
			return nil, fmt.Errorf("failed to list uploads: %w", err)
		}

		for _, item := range response.Items {
			ids = append(ids, item.ContentDetails.VideoID)
			if limit > 0 && len(ids) >= limit {
				return ids, nil
			}
		}

		if response.NextPageToken == "" {
			return ids, nil
		}
		pageToken = response.NextPageToken
	}
}

// ChannelVideos lists a channel's uploads with full metadata.
func (y *YouTubeService) ChannelVideos(ctx context.Context, channelID string, limit int) ([]models.Video, error) {
	ids, err := y.ChannelVideoIDs(ctx, channelID, limit)
	if err != nil {
		return nil, err
	}
	return y.Videos(ctx, ids)
}

// Video converts the API item to the shared model.
//
// StartedAt is the actual stream start, falling back to the scheduled start, and nil for plain uploads.
func (v YouTubeVideo) Video() models.Video {
	video := models.Video{
		ID:          v.ID,
		ChannelID:   v.Snippet.ChannelID,
		Title:       v.Snippet.Title,
		Description: v.Snippet.Description,
	}

	if t, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
		video.PublishedAt = t
	}

	if d, ok := ConvertDuration(v.ContentDetails.Duration); ok {
		video.Duration = d
	}

	if live := v.LiveStreamingDetails; live != nil {
		start := live.ActualStartTime
		if start == "" {
			start = live.ScheduledStartTime
		}
		if t, err := time.Parse(time.RFC3339, start); err == nil {
			video.StartedAt = &t
		}
	}

	return video
}

// ConvertDuration turns an ISO 8601 duration such as "PT1H30M15S" into "01:30:15". Days fold into hours.
func ConvertDuration(iso string) (string, bool) {
	iso = strings.TrimSpace(iso)
	m := isoDurationPattern.FindStringSubmatch(iso)
	if m == nil || iso == "P" || iso == "PT" {
		return "", false
	}

	parts := make([]int, 4)
	for i, s := range m[1:] {
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return "", false
		}
		parts[i] = n
	}

	hours := parts[0]*24 + parts[1]
	return fmt.Sprintf("%02d:%02d:%02d", hours, parts[2], parts[3]), true
}
