package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/vtx/internal/shared"
)

const (
	defaultTimeout = 30 * time.Second

	spotifyName = "spotify"
	youtubeName = "youtube"
)

// doJSON performs a GET request and decodes the JSON response into result.
func doJSON(ctx context.Context, client *http.Client, service, apiURL string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s request failed: %w", shared.ErrAPIRequest, service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		detail := ""
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			detail = errResp.Error.Message
		}
		return statusError(service, resp.StatusCode, detail)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// statusError maps a non-2xx status onto a sentinel error.
func statusError(service string, status int, detail string) error {
	var sentinel error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		sentinel = shared.ErrAuthFailed
	case status == http.StatusNotFound && service == youtubeName:
		sentinel = shared.ErrVideoNotFound
	case status == http.StatusTooManyRequests:
		sentinel = shared.ErrRateLimited
	case status >= 500:
		sentinel = shared.ErrServiceUnavailable
	default:
		sentinel = shared.ErrAPIRequest
	}

	if detail != "" {
		return fmt.Errorf("%w: %s API error (status %d): %s", sentinel, service, status, detail)
	}
	return fmt.Errorf("%w: %s API error: status %d", sentinel, service, status)
}
