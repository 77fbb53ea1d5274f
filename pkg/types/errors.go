package types

import "errors"

// Domain errors for type validation
var (
	// Query result errors
	ErrInvalidVectorID  = errors.New("invalid vector ID")
	ErrInvalidRank      = errors.New("rank must be >= 1")
	ErrNegativeDistance = errors.New("distance cannot be negative")
	ErrEmptyContent     = errors.New("content cannot be empty")
)
