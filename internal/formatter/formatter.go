// package formatter renders enrichment results as CSV reports and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
)

// SetlistRow pairs a video with the setlist extracted from its comments.
type SetlistRow struct {
	Video   models.Video
	Entries []models.SetlistEntry
}

// TagRow pairs a video with its matched tags.
type TagRow struct {
	Video models.Video
	Match models.TagMatch
}

// ArtistRow is one song processed by an artist update run.
type ArtistRow struct {
	SongID   string
	Title    string
	Resolved models.ResolvedArtist
}

// writeCSV writes headers followed by records and returns the encoded bytes.
func writeCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// SetlistsToCSV renders one line per setlist entry.
//
// Columns: video_id, video_url_with_timestamp, video_title, video_url, song_title, artist, start_time, start_seconds
func SetlistsToCSV(rows []SetlistRow) ([]byte, error) {
	headers := []string{
		"video_id", "video_url_with_timestamp", "video_title", "video_url",
		"song_title", "artist", "start_time", "start_seconds",
	}

	var records [][]string
	for _, row := range rows {
		for _, e := range row.Entries {
			records = append(records, []string{
				row.Video.ID,
				shared.TimestampURL(row.Video.ID, e.StartSeconds),
				row.Video.Title,
				row.Video.URL(),
				e.SongTitle,
				e.Artist,
				shared.FormatClock(e.StartSeconds),
				strconv.Itoa(e.StartSeconds),
			})
		}
	}
	return writeCSV(headers, records)
}

// TagsToCSV renders one line per tagged video with its tag ids and names space separated.
//
// Videos without tags are left out.
func TagsToCSV(rows []TagRow, vocab models.TagVocabulary) ([]byte, error) {
	headers := []string{"stream_id", "title", "stream_tag_id", "stream_tag_names"}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		ids := row.Match.IDs()
		if len(ids) == 0 {
			continue
		}
		idStrs := make([]string, len(ids))
		for i, id := range ids {
			idStrs[i] = strconv.Itoa(id)
		}
		records = append(records, []string{
			row.Video.ID,
			row.Video.Title,
			strings.Join(idStrs, " "),
			strings.Join(row.Match.Names(vocab), " "),
		})
	}
	return writeCSV(headers, records)
}

// SongsToCSV renders the song catalog.
func SongsToCSV(songs []models.Song) ([]byte, error) {
	records := make([][]string, 0, len(songs))
	for _, s := range songs {
		records = append(records, []string{s.ID, s.Title, s.Artist})
	}
	return writeCSV([]string{"id", "title", "artist"}, records)
}

// UpdatedArtistsToCSV renders the songs whose artist was resolved.
func UpdatedArtistsToCSV(rows []ArtistRow) ([]byte, error) {
	var records [][]string
	for _, r := range rows {
		if !r.Resolved.Found {
			continue
		}
		records = append(records, []string{r.SongID, r.Title, r.Resolved.ArtistNames, r.Resolved.MatchedTrackName})
	}
	return writeCSV([]string{"id", "title", "artist", "spotify_title"}, records)
}

// NotFoundToCSV renders the songs no catalog candidate was found for.
func NotFoundToCSV(rows []ArtistRow) ([]byte, error) {
	var records [][]string
	for _, r := range rows {
		if r.Resolved.Found {
			continue
		}
		records = append(records, []string{r.SongID, r.Title})
	}
	return writeCSV([]string{"id", "title"}, records)
}

// SetlistToText renders a single setlist as numbered lines with their start clock.
func SetlistToText(row SetlistRow) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n%s\n", row.Video.Title, row.Video.URL())
	if len(row.Entries) == 0 {
		buf.WriteString("No setlist found\n")
		return buf.Bytes()
	}
	buf.WriteString("\n")

	for i, e := range row.Entries {
		line := e.SongTitle
		if e.Artist != "" {
			line = fmt.Sprintf("%s / %s", e.SongTitle, e.Artist)
		}
		fmt.Fprintf(&buf, "%2d. [%s] %s\n", i+1, shared.FormatClock(e.StartSeconds), line)
	}
	return buf.Bytes()
}

// ReportName builds a timestamped report filename such as updated_artists_20250101_120000.csv.
func ReportName(prefix string, at time.Time) string {
	return fmt.Sprintf("%s_%s.csv", prefix, at.Format("20060102_150405"))
}

// TagExportName builds the timestamped tag export filename, e.g. 20250101_120000_stream_tags.csv.
func TagExportName(at time.Time) string {
	return at.Format("20060102_150405") + "_stream_tags.csv"
}

// SetlistExportName names the setlist export of a tag. 歌枠 and ライブ keep their historical
// names extracted_songs_stream.csv and extracted_songs_live.csv.
func SetlistExportName(tag string) string {
	switch tag {
	case "歌枠":
		return "extracted_songs_stream.csv"
	case "ライブ":
		return "extracted_songs_live.csv"
	case "":
		return "extracted_songs.csv"
	}
	return "extracted_songs_" + tag + ".csv"
}

// LatestName is the link that points at the newest export in a directory.
const LatestName = "latest.csv"

// LinkLatest points dir/latest.csv at the file name in the same directory, replacing an older link.
func LinkLatest(dir, name string) error {
	link := filepath.Join(dir, LatestName)
	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", link, err)
	}
	if err := os.Symlink(name, link); err != nil {
		return fmt.Errorf("failed to link %s: %w", link, err)
	}
	return nil
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: empty output path", shared.ErrInvalidInput)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
