// Package models defines the data model shared by the enrichment components, the collaborators and the persistence layer.
//
// The package contains two categories of types:
//
// 1. Enrichment values: ephemeral inputs and outputs of the core components
//   - [Comment] : a viewer comment supplied per extraction call
//   - [SetlistEntry] and [ChosenSetlist] : songs mined from comments
//   - [TagVocabulary] and [TagMatch] : content tags inferred from titles
//   - [ArtistCandidate] and [ResolvedArtist] : catalog search results and the chosen artist
//
// 2. Stored records: rows the orchestration layer reads and writes
//   - [Video] : a channel upload or stream with its optional start time and duration
//   - [Song] : a song title awaiting or holding a resolved artist
package models
