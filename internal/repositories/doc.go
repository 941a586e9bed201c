// Package repositories implements SQLite persistence for the enrichment results.
//
// Key Implementations:
//   - [VideoRepository] : channel videos, upserted on every sync
//   - [TagRepository] : the tag vocabulary and the tags assigned to each video
//   - [SetlistRepository] : setlist entries per video, replaced as a whole on re-extraction
//   - [SongRepository] : the song catalog and its resolved artists
//
// Every write that touches more than one row runs in a single transaction, so a re-run replaces a
// video's previous result atomically.
package repositories
