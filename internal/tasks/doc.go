// Package tasks feeds videos and songs through the enrichment components and persists the results.
//
// # Core Operations
//
// [EnrichmentEngine] runs four batch operations:
//
//  1. [EnrichmentEngine.SyncVideos] : lists a channel's uploads and stores their metadata
//  2. [EnrichmentEngine.ExtractSetlists] : fetches comments per video, picks the best setlist
//     and stores it, seeding the song catalog with the titles found
//  3. [EnrichmentEngine.ClassifyTags] : matches each video against the tag vocabulary
//  4. [EnrichmentEngine.ResolveArtists] : resolves the artist of each pending song
//
// # Rate Limiting
//
// Comment fetches wait on one [rate.Limiter] per engine and catalog searches on another
// ([LimitSearcher]), giving a fixed delay between outbound calls.
//
// # Failures
//
// A failure for one video or song is recorded in its result and the run moves on. Only context
// cancellation stops a run early; the partial result is returned with the context error.
//
// # Progress Reporting
//
// All operations send [ProgressUpdate] values over an optional channel. Sends never block: when the
// channel is full the update is dropped.
//
// A nil store skips persistence, which gives a dry run.
package tasks
