package geo

import "errors"

// Sentinel errors returned by the geohash functions. They are always wrapped
// with context, so compare with errors.Is rather than ==.
//
// Go Learning Note — Sentinel Errors:
// A sentinel error is a package-level error value that callers can test for.
// Wrapping it with fmt.Errorf("...: %w", ErrX) adds context (which hash,
// which direction) while keeping errors.Is(err, ErrX) true. The HTTP layer
// relies on this to map each kind of failure to a status code.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidGeohash   = errors.New("invalid geohash")
	ErrInvalidEncoding  = errors.New("invalid binary encoding")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrOutOfRange       = errors.New("outside the working domain")
)
