package normalize

import "errors"

// ErrDecode marks a provider payload that does not match the expected schema.
var ErrDecode = errors.New("decode provider payload")
