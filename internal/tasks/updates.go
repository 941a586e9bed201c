package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Err     error  // Set when the step failed
}

// Operation phase enumeration
type Phase int

const (
	FetchVideos Phase = iota
	StoreVideos
	ExtractSetlist
	ClassifyTags
	ResolveArtist
)

func (p Phase) String() string {
	switch p {
	case FetchVideos:
		return "fetch_videos"
	case StoreVideos:
		return "store_videos"
	case ExtractSetlist:
		return "extract_setlist"
	case ClassifyTags:
		return "classify_tags"
	case ResolveArtist:
		return "resolve_artist"
	default:
		return ""
	}
}

func fetchVideosUpdate(channelID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchVideos,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching uploads of channel %s...", channelID),
	}
}

func storeVideosUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StoreVideos,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Storing %d videos...", count),
	}
}

func setlistUpdate(step, total int, title string, entries int, err error) ProgressUpdate {
	u := ProgressUpdate{Phase: ExtractSetlist, Step: step, Total: total, Err: err}
	switch {
	case err != nil:
		u.Message = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err)
	case entries == 0:
		u.Message = fmt.Sprintf("[%d/%d] - %s: no setlist found", step, total, title)
	default:
		u.Message = fmt.Sprintf("[%d/%d] ✓ %s (%d songs)", step, total, title, entries)
	}
	return u
}

func tagsUpdate(step, total int, title string, names []string, err error) ProgressUpdate {
	u := ProgressUpdate{Phase: ClassifyTags, Step: step, Total: total, Err: err}
	if err != nil {
		u.Message = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err)
	} else {
		u.Message = fmt.Sprintf("[%d/%d] %s → %v", step, total, title, names)
	}
	return u
}

func artistUpdate(step, total int, title, artist string, err error) ProgressUpdate {
	u := ProgressUpdate{Phase: ResolveArtist, Step: step, Total: total, Err: err}
	switch {
	case err != nil:
		u.Message = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err)
	case artist == "":
		u.Message = fmt.Sprintf("[%d/%d] - %s: not found", step, total, title)
	default:
		u.Message = fmt.Sprintf("[%d/%d] ✓ %s → %s", step, total, title, artist)
	}
	return u
}
