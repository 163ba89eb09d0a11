package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrLeaderboard  = errors.New("leaderboard file unusable")
)
