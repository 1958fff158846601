package domain

import "errors"

// Sentinel errors for the catalog domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidItem indicates the item violates domain constraints.
	ErrInvalidItem = errors.New("invalid item")

	// ErrInvalidPageRequest indicates a page number or page size out of range.
	ErrInvalidPageRequest = errors.New("invalid page request")
)
