package repositories

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")

	// ErrConcurrentModification means the portfolio changed between the
	// snapshot read and the commit. The caller retries against a fresh
	// snapshot.
	ErrConcurrentModification = errors.New("portfolio was modified concurrently")
)
