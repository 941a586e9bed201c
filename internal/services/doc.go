// Package services implements the HTTP collaborators of the enrichment engine.
//
// # Spotify
//
// [SpotifyService] is the catalog search used for artist resolution. It authenticates with the OAuth2
// client credentials grant; the [clientcredentials.Config] client fetches and refreshes the app token
// on its own, so no user login is involved.
//
// # YouTube
//
// [YouTubeService] talks to the YouTube Data API v3 with an API key. It supplies comment threads for
// setlist extraction and video metadata (title, description, stream start, duration) for tagging.
//
// # Error Handling
//
// HTTP failures map onto sentinel errors from the shared package:
//   - [shared.ErrMissingCredentials] : constructor called without keys
//   - [shared.ErrAuthFailed] : 401 or 403 from the API
//   - [shared.ErrVideoNotFound] : YouTube 404 or an empty item list for a video id
//   - [shared.ErrRateLimited] : 429
//   - [shared.ErrServiceUnavailable] : 5xx
//   - [shared.ErrAPIRequest] : anything else
//
// Rate limiting is left to callers.
package services
