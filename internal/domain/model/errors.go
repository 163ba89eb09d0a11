package model

import "errors"

// Sentinel kinds for model parsing errors.
var (
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidPosition  = errors.New("invalid position")
	ErrInvalidFormation = errors.New("invalid formation")
)
