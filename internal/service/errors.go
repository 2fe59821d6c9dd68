package service

import "errors"

var (
	// ErrNotFound marks a missing room, user or reservation. Distinct from a
	// rule violation.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an operation the acting user may not perform.
	ErrForbidden = errors.New("forbidden")
)
