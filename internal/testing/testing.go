// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/vtx/internal/models"
)

// SearchCall records one [MockSearcher.SearchTracks] invocation.
type SearchCall struct {
	Query  string
	Market string
	Limit  int
}

// MockSearcher is a test double for the catalog search used by artist resolution.
//
// Results and Errors are keyed by market; the empty key is the unrestricted search.
type MockSearcher struct {
	Results map[string][]models.ArtistCandidate
	Errors  map[string]error

	mu    sync.Mutex
	calls []SearchCall
}

func (m *MockSearcher) SearchTracks(ctx context.Context, query, market string, limit int) ([]models.ArtistCandidate, error) {
	m.mu.Lock()
	m.calls = append(m.calls, SearchCall{Query: query, Market: market, Limit: limit})
	m.mu.Unlock()

	if err := m.Errors[market]; err != nil {
		return nil, err
	}
	return m.Results[market], nil
}

// Calls returns a copy of the recorded searches.
func (m *MockSearcher) Calls() []SearchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SearchCall(nil), m.calls...)
}

// MockCommentSource is a test double for the comment fetcher used by setlist extraction.
type MockCommentSource struct {
	ByVideo map[string][]models.Comment
	Errors  map[string]error

	mu    sync.Mutex
	calls []string
}

func NewMockCommentSource(comments map[string][]models.Comment) *MockCommentSource {
	return &MockCommentSource{ByVideo: comments, Errors: map[string]error{}}
}

func (m *MockCommentSource) Comments(ctx context.Context, videoID string, limit int) ([]models.Comment, error) {
	m.mu.Lock()
	m.calls = append(m.calls, videoID)
	m.mu.Unlock()

	if err := m.Errors[videoID]; err != nil {
		return nil, err
	}
	comments := m.ByVideo[videoID]
	if limit > 0 && len(comments) > limit {
		comments = comments[:limit]
	}
	return comments, nil
}

// Calls returns the video ids requested so far, in order.
func (m *MockCommentSource) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockVideoSource is a test double for the channel listing used by video sync.
type MockVideoSource struct {
	Videos []models.Video
	Err    error
}

func (m *MockVideoSource) ChannelVideos(ctx context.Context, channelID string, limit int) ([]models.Video, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > 0 && len(m.Videos) > limit {
		return m.Videos[:limit], nil
	}
	return m.Videos, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
