// Package setlist mines timestamped song setlists from viewer comments.
//
// A comment such as
//
//	00:00 Song A / Artist A
//	01:30 Song B
//
// becomes an ordered list of [models.SetlistEntry] values. [Extractor.Choose] then picks the best
// candidate among all comments of a video: the most entries wins, then the most likes, then the
// comment seen first.
//
// Extraction never fails. Malformed timestamps and noise segments (stage banter, greetings, asides)
// are skipped one entry at a time, and a video without any qualifying comment yields an empty
// [models.ChosenSetlist].
package setlist
