package tagging

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"
)

// Input is the video metadata a rule can look at. Only Title is required.
type Input struct {
	Title       string
	Description string
	StartedAt   *time.Time
	Duration    string // HH:MM:SS
}

// Context carries classifier-wide settings shared by all rules.
type Context struct {
	Location *time.Location // used to derive the local stream hour
}

// Rule decides whether one tag applies to a video.
type Rule interface {
	Matches(in Input, ctx Context) bool
}

var (
	serialPattern    = regexp.MustCompile(`[#＃][0-9０-９]+`)
	hashtagPattern   = regexp.MustCompile(`[#＃][^\s#＃]+`)
	pureSerialTag    = regexp.MustCompile(`^[#＃][0-9０-９]+$`)
	milestonePattern = regexp.MustCompile(`[0-9０-９]+(周年|万人|日記念)`)
	bracketPattern   = regexp.MustCompile(`【([^】]*)】`)
)

// KeywordRule matches when any keyword appears in the title, or any description keyword appears in
// the description.
type KeywordRule struct {
	Keywords            []string
	DescriptionKeywords []string
	FoldCase            bool // case- and width-insensitive matching
}

func (r KeywordRule) Matches(in Input, _ Context) bool {
	if containsAny(in.Title, r.Keywords, r.FoldCase) {
		return true
	}
	return in.Description != "" && containsAny(in.Description, r.DescriptionKeywords, r.FoldCase)
}

// MorningRule matches on a keyword, or on a morning keyword for streams that started before noon local time.
type MorningRule struct {
	Keywords        []string
	MorningKeywords []string
}

func (r MorningRule) Matches(in Input, ctx Context) bool {
	if containsAny(in.Title, r.Keywords, false) {
		return true
	}
	return IsMorning(in.StartedAt, ctx.Location) && containsAny(in.Title, r.MorningKeywords, false)
}

// SerialRule matches on a keyword or a "#<digits>" episode marker.
type SerialRule struct {
	Keywords []string
	FoldCase bool
}

func (r SerialRule) Matches(in Input, _ Context) bool {
	return containsAny(in.Title, r.Keywords, r.FoldCase) || serialPattern.MatchString(in.Title)
}

// MilestoneRule matches on a keyword or an anniversary pattern such as "3周年", "10万人" or "100日記念".
type MilestoneRule struct {
	Keywords []string
}

func (r MilestoneRule) Matches(in Input, _ Context) bool {
	return containsAny(in.Title, r.Keywords, false) || milestonePattern.MatchString(in.Title)
}

// HashtagRule matches on a keyword or a hashtag that is not a bare "#<digits>" episode marker.
type HashtagRule struct {
	Keywords []string
}

func (r HashtagRule) Matches(in Input, _ Context) bool {
	if containsAny(in.Title, r.Keywords, false) {
		return true
	}
	for _, tag := range hashtagPattern.FindAllString(in.Title, -1) {
		if !pureSerialTag.MatchString(tag) {
			return true
		}
	}
	return false
}

// ScopedRule matches only when a 【...】 segment of the title holds an event keyword and the title
// holds none of the exclusion keywords.
//
// Exclusions apply to this rule only.
type ScopedRule struct {
	EventKeywords []string
	Exclude       []string
	FoldCase      bool
}

func (r ScopedRule) Matches(in Input, _ Context) bool {
	if containsAny(in.Title, r.Exclude, false) {
		return false
	}
	for _, m := range bracketPattern.FindAllStringSubmatch(in.Title, -1) {
		if containsAny(m[1], r.EventKeywords, r.FoldCase) {
			return true
		}
	}
	return false
}

// DurationRule matches on a keyword or when the video runs at least MinMinutes.
type DurationRule struct {
	Keywords   []string
	MinMinutes int
}

func (r DurationRule) Matches(in Input, _ Context) bool {
	if containsAny(in.Title, r.Keywords, false) {
		return true
	}
	minutes, ok := DurationMinutes(in.Duration)
	return ok && r.MinMinutes > 0 && minutes >= r.MinMinutes
}

// IsMorning reports whether startedAt falls in [00:00, 12:00) in loc. A nil time is never morning.
func IsMorning(startedAt *time.Time, loc *time.Location) bool {
	if startedAt == nil || startedAt.IsZero() {
		return false
	}
	if loc == nil {
		loc = time.UTC
	}
	return startedAt.In(loc).Hour() < 12
}

// DurationMinutes parses "HH:MM:SS" (or "MM:SS") into whole minutes.
//
// Seconds above 30 round up to the next minute; exactly 30 rounds down.
func DurationMinutes(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	fields := strings.Split(s, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return 0, false
	}

	values := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return 0, false
		}
		values[i] = n
	}

	var hours, minutes, seconds int
	if len(values) == 3 {
		hours, minutes, seconds = values[0], values[1], values[2]
	} else {
		minutes, seconds = values[0], values[1]
	}
	if seconds >= 60 || (len(values) == 3 && minutes >= 60) {
		return 0, false
	}

	total := hours*60 + minutes
	if seconds > 30 {
		total++
	}
	return total, true
}

func containsAny(s string, keywords []string, fold bool) bool {
	if s == "" || len(keywords) == 0 {
		return false
	}
	if fold {
		s = foldString(s)
	}
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if fold {
			kw = foldString(kw)
		}
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// foldString maps full-width ASCII to half-width and lowercases.
func foldString(s string) string {
	return strings.ToLower(width.Fold.String(s))
}
