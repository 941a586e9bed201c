// package models defines the data model for the video enrichment engine
package models

import (
	"sort"
	"strings"
	"time"
)

// Comment is a single viewer comment for one video.
type Comment struct {
	Text      string
	Author    string
	LikeCount int
}

// SetlistEntry is one song found in a comment, with its start offset in the video.
type SetlistEntry struct {
	SongTitle    string `json:"song_title"`
	Artist       string `json:"artist"`
	StartSeconds int    `json:"start_seconds"`
}

// ChosenSetlist is the best setlist found for a video.
//
// LikeCount belongs to the winning comment and is only used for tie-breaking.
type ChosenSetlist struct {
	Entries   []SetlistEntry `json:"entries"`
	LikeCount int            `json:"-"`
}

// IsEmpty reports whether no qualifying comment was found.
func (c ChosenSetlist) IsEmpty() bool {
	return len(c.Entries) == 0
}

// TagVocabulary maps externally assigned tag ids to unique tag names.
type TagVocabulary map[int]string

// IDs returns the vocabulary ids in ascending order.
func (v TagVocabulary) IDs() []int {
	ids := make([]int, 0, len(v))
	for id := range v {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// TagMatch is the set of tag ids matched for one video.
type TagMatch map[int]struct{}

// NewTagMatch creates a TagMatch holding ids.
func NewTagMatch(ids ...int) TagMatch {
	m := make(TagMatch, len(ids))
	for _, id := range ids {
		m.Add(id)
	}
	return m
}

// Add inserts id into the set.
func (m TagMatch) Add(id int) {
	m[id] = struct{}{}
}

// Has reports whether id is in the set.
func (m TagMatch) Has(id int) bool {
	_, ok := m[id]
	return ok
}

// IDs returns the matched ids in ascending order.
func (m TagMatch) IDs() []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Names resolves the matched ids against vocab, ordered by id.
func (m TagMatch) Names(vocab TagVocabulary) []string {
	names := make([]string, 0, len(m))
	for _, id := range m.IDs() {
		if name, ok := vocab[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// AlbumType is the release type of the album a catalog track belongs to.
type AlbumType string

const (
	AlbumTypeAlbum       AlbumType = "album"
	AlbumTypeSingle      AlbumType = "single"
	AlbumTypeCompilation AlbumType = "compilation"
)

// ArtistCandidate is one track returned by a catalog search.
//
// Popularity and ReleaseYear may be missing or unreliable; they only ever make scoring neutral.
type ArtistCandidate struct {
	TrackName   string
	ArtistNames []string
	Popularity  int  // 0-100
	ReleaseYear *int // nil when the catalog has no usable release date
	AlbumType   AlbumType
}

// JoinedArtists returns all performers joined with ", ".
func (c ArtistCandidate) JoinedArtists() string {
	return strings.Join(c.ArtistNames, ", ")
}

// PrimaryArtist returns the first performer or an empty string.
func (c ArtistCandidate) PrimaryArtist() string {
	if len(c.ArtistNames) == 0 {
		return ""
	}
	return c.ArtistNames[0]
}

// ResolvedArtist is the outcome of resolving a song title against the catalog.
//
// The zero value is [NotFound].
type ResolvedArtist struct {
	ArtistNames      string `json:"artist_names"`
	MatchedTrackName string `json:"matched_track_name"`
	Found            bool   `json:"found"`
}

// NotFound is returned when no candidate could be resolved.
var NotFound = ResolvedArtist{}

// Video is a channel upload or stream.
type Video struct {
	ID          string
	ChannelID   string
	Title       string
	Description string
	PublishedAt time.Time
	StartedAt   *time.Time // actual stream start, nil for plain uploads
	Duration    string     // HH:MM:SS
}

// URL returns the watch URL of the video.
func (v Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// Song is a song title tracked by the catalog, with its artist once resolved.
type Song struct {
	ID     string
	Title  string
	Artist string
}

// PendingArtist is the placeholder artist of songs that still need resolution.
const PendingArtist = "TODO"
