package source

import "errors"

// Sentinel errors recorded on failed attempts. None of them escape Resolve.
var (
	ErrStatus         = errors.New("unexpected upstream status")
	ErrTooLarge       = errors.New("payload exceeds size limit")
	ErrTooFewElements = errors.New("too few elements")
	ErrTooFewFixtures = errors.New("too few fixtures")
	ErrBadURL         = errors.New("invalid source url")
)
