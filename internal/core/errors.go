package core

import "errors"

// Failure taxonomy shared by the storage and service layers. Validation
// failures use the field-specific sentinels in domain.go; anything else
// coming out of the store is wrapped and passed through unchanged.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	ErrInUse    = errors.New("still referenced")
)
