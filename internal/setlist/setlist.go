package setlist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
)

// DefaultNoisePatterns match song titles that are really banter, greetings or asides.
// Patterns are compiled case-insensitively.
var DefaultNoisePatterns = []string{
	`^(MC|EN|opening|start|挨拶|お手紙|♫|🎵)`,
	`(チャンネル登録|カウンター|音量調整)`,
	`(団長|ドラマ|アレルギー|食べた|語っている|気付く|やりたいこと)`,
	`^(教師|高校生|結婚できない|占い)`,
	`「.*」`,
	`○`,
	`^\([^)]+\)`,
	`^(見ていない|に似てる|ですか)`,
	`の熱帯夜`,
}

// minTitleRunes is the shortest accepted song title, exclusive.
const minTitleRunes = 2

var (
	timestampPattern = regexp.MustCompile(`\d{1,2}:\d{2}(?::\d{2})?`)
	separatorPattern = regexp.MustCompile(`^(.+?)\s*[/／\-－]\s*(.+)$`)

	// Song number forms written after a timestamp. Only the first match is stripped.
	numberPrefixes = []*regexp.Regexp{
		regexp.MustCompile(`^\d+\.\s*`),
		regexp.MustCompile(`^0?\d\s*曲目[:：]\s*`),
		regexp.MustCompile(`^\d+\s+`),
	}
)

// Extractor turns comment text into setlist entries.
//
// An Extractor holds only compiled, read-only patterns and is safe for concurrent use.
type Extractor struct {
	noise []*regexp.Regexp
}

// NewExtractor compiles patterns into an Extractor. A nil or empty slice selects [DefaultNoisePatterns].
func NewExtractor(patterns []string) (*Extractor, error) {
	if len(patterns) == 0 {
		patterns = DefaultNoisePatterns
	}

	noise := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("%w: noise pattern %q: %v", shared.ErrInvalidConfig, p, err)
		}
		noise = append(noise, re)
	}

	return &Extractor{noise: noise}, nil
}

// Default returns an Extractor using [DefaultNoisePatterns].
func Default() *Extractor {
	e, err := NewExtractor(nil)
	if err != nil {
		panic(err)
	}
	return e
}

// Extract returns the setlist candidate contained in one comment, in comment order.
//
// Comments without a valid timestamp token yield nil.
func (e *Extractor) Extract(text string) []models.SetlistEntry {
	text = StripHTML(text)

	bounds := timestampPattern.FindAllStringIndex(text, -1)
	if len(bounds) == 0 {
		return nil
	}

	var entries []models.SetlistEntry
	for i, b := range bounds {
		end := len(text)
		if i+1 < len(bounds) {
			end = bounds[i+1][0]
		}

		seconds, ok := ParseTimestamp(text[b[0]:b[1]])
		if !ok {
			continue
		}

		title, artist := splitSegment(text[b[1]:end])
		if e.isNoise(title) {
			continue
		}

		entries = append(entries, models.SetlistEntry{
			SongTitle:    title,
			Artist:       artist,
			StartSeconds: seconds,
		})
	}

	return entries
}

// Choose selects the best setlist across all comments of one video.
//
// The candidate with the most entries wins; ties go to the higher like count and then to the
// earlier comment.
func (e *Extractor) Choose(comments []models.Comment) models.ChosenSetlist {
	var best models.ChosenSetlist

	for _, c := range comments {
		entries := e.Extract(c.Text)
		if len(entries) == 0 {
			continue
		}

		more := len(entries) > len(best.Entries)
		tieWithMoreLikes := len(entries) == len(best.Entries) && c.LikeCount > best.LikeCount
		if more || tieWithMoreLikes {
			best = models.ChosenSetlist{Entries: entries, LikeCount: c.LikeCount}
		}
	}

	return best
}

// isNoise reports whether title is too short or matches a noise pattern.
func (e *Extractor) isNoise(title string) bool {
	if utf8.RuneCountInString(title) <= minTitleRunes {
		return true
	}
	for _, re := range e.noise {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}

// splitSegment normalizes the text following a timestamp into a song title and an optional artist.
func splitSegment(segment string) (string, string) {
	segment = shared.CollapseSpace(segment)
	for _, re := range numberPrefixes {
		if loc := re.FindStringIndex(segment); loc != nil {
			segment = segment[loc[1]:]
			break
		}
	}

	if m := separatorPattern.FindStringSubmatch(segment); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return strings.TrimSpace(segment), ""
}

// ParseTimestamp converts "M:SS", "MM:SS" or "H:MM:SS" to seconds.
//
// Fields are folded from hours to seconds, so a two-field token is minutes and seconds. Minute and
// second fields that follow another field must be below 60.
func ParseTimestamp(token string) (int, bool) {
	fields := strings.Split(strings.TrimSpace(token), ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, false
	}

	units := []int{3600, 60, 1}[3-len(fields):]
	total := 0
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return 0, false
		}
		if i > 0 && n >= 60 {
			return 0, false
		}
		total += n * units[i]
	}

	return total, true
}
