// Package artist resolves the recording artist of a song from a music catalog given only its title.
//
// A [Resolver] searches a market-restricted catalog first and falls back to a wider search, narrows the
// results to the candidates whose track name matches the title, and then picks one: a candidate
// performed by the priority artist wins outright, otherwise the highest [Score] wins.
package artist
