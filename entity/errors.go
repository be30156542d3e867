package entity

import "errors"

var (
	// ErrNotFound is returned by read paths when the requested blob is
	// absent. Callers translate it into an empty result; it never carries a
	// store failure.
	ErrNotFound = errors.New("not found")

	// ErrSessionTerminated is returned when a staging upload targets a
	// session that was already accepted or rejected. A fresh session id must
	// be minted for the next edit.
	ErrSessionTerminated = errors.New("staging session already terminated")
)
