package repository

import (
	"context"
	"slices"
	"sync/atomic"
)

// less returns true if a should appear before b in the leaderboard
// (higher points first, then name asc for determinism).
func less(a, b Entry) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	return a.Name < b.Name
}

func compareEntries(a, b Entry) int {
	switch {
	case less(a, b):
		return -1
	case less(b, a):
		return 1
	default:
		return 0
	}
}

// MemoryLeaderboard keeps entries pre-sorted behind an atomic pointer so
// reads never block on a Replace.
type MemoryLeaderboard struct {
	entries atomic.Pointer[[]Entry]
}

// NewMemoryLeaderboard creates a leaderboard seeded with entries.
func NewMemoryLeaderboard(entries []Entry) *MemoryLeaderboard {
	l := &MemoryLeaderboard{}
	l.Replace(context.Background(), entries)
	return l
}

// Replace implements Leaderboard.Replace.
func (l *MemoryLeaderboard) Replace(_ context.Context, entries []Entry) {
	sorted := slices.Clone(entries)
	for i := range sorted {
		sorted[i].You = false
	}
	slices.SortStableFunc(sorted, compareEntries)
	l.entries.Store(&sorted)
}

// TopN implements Leaderboard.TopN.
func (l *MemoryLeaderboard) TopN(_ context.Context, n int, extra ...Entry) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	base := l.load()
	merged := make([]Entry, 0, len(base)+len(extra))
	merged = append(merged, base...)
	merged = append(merged, extra...)
	if len(extra) > 0 {
		slices.SortStableFunc(merged, compareEntries)
	}
	if len(merged) > n {
		merged = merged[:n]
	}
	for i := range merged {
		merged[i].Rank = i + 1
	}
	return merged, nil
}

// Count implements Leaderboard.Count.
func (l *MemoryLeaderboard) Count(_ context.Context) int {
	return len(l.load())
}

func (l *MemoryLeaderboard) load() []Entry {
	if p := l.entries.Load(); p != nil {
		return *p
	}
	return nil
}
