package artist

import (
	"strings"

	"github.com/desertthunder/vtx/internal/models"
)

const (
	exactMatchBonus = 100.0
	yearAgeBonus    = 1.5
	minScoredYear   = 1970
	japaneseBonus   = 40.0
	coverPenalty    = -50.0
)

var albumTypeBonus = map[models.AlbumType]float64{
	models.AlbumTypeAlbum:       30,
	models.AlbumTypeSingle:      20,
	models.AlbumTypeCompilation: -10,
}

// CoverMarkers flag covers, live takes and remixes. Matching is done on lowercased names.
var CoverMarkers = []string{
	"cv.", "cv：", "starring", "feat.", "cover", "カバー", "live", "ライブ",
	"remix", "リミックス", "remaster", "remastered", "2019 remaster", "live from",
}

// ScoreContext is the query-wide input to [Score].
type ScoreContext struct {
	NormalizedQuery string // result of [Normalize] on the song title
	CurrentYear     int
}

// Score rates how likely c is the original recording of the queried song. Higher is better.
//
// Missing popularity or release year contribute nothing.
func Score(c models.ArtistCandidate, sc ScoreContext) float64 {
	score := float64(max(c.Popularity, 0))

	if Normalize(c.TrackName) == sc.NormalizedQuery {
		score += exactMatchBonus
	}

	if y := c.ReleaseYear; y != nil && *y >= minScoredYear && *y <= sc.CurrentYear {
		score += yearAgeBonus * float64(sc.CurrentYear-*y)
	}

	score += albumTypeBonus[c.AlbumType]

	primary := c.PrimaryArtist()
	if ContainsJapanese(primary) {
		score += japaneseBonus
	}

	if IsCover(c.TrackName, primary) {
		score += coverPenalty
	}

	return score
}

// IsCover reports whether any of names contains a [CoverMarkers] entry.
func IsCover(names ...string) bool {
	for _, name := range names {
		lower := strings.ToLower(name)
		for _, marker := range CoverMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}
	return false
}
