package types

import "errors"

// Sentinel kinds shared by the service and the API.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerNotFound  = errors.New("player not in pool")
	ErrNotStarted      = errors.New("service not started")
)
