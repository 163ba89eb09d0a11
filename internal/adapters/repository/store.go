// Package repository holds the in-memory state behind the API: squad
// sessions and the leaderboard of other managers.
package repository

import "context"

// Entry represents a leaderboard row.
type Entry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	You    bool   `json:"you,omitempty"`
}

// Leaderboard provides read/write access to the ranking state.
type Leaderboard interface {
	// Replace swaps the stored entries for a new set.
	Replace(ctx context.Context, entries []Entry)

	// TopN merges extra into the stored entries and returns the first n
	// ordered by points desc, then name asc. Ranks run 1..n.
	TopN(ctx context.Context, n int, extra ...Entry) ([]Entry, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) int
}
