package auth

import "errors"

var (
	// ErrUnauthenticated is returned when the token is missing, malformed or not recognized.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the caller may not act on the resource.
	ErrForbidden = errors.New("forbidden")
)
