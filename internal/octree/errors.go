package octree

import "errors"

var (
	// ErrChildIndex is returned for a child index outside [0, 7].
	ErrChildIndex = errors.New("octree: child index out of range")

	// ErrNotInternal is returned when asking a leaf for a child.
	ErrNotInternal = errors.New("octree: region is a leaf")

	// ErrInvalidCapacity is returned for a capacity below one.
	ErrInvalidCapacity = errors.New("octree: capacity must be at least 1")

	// ErrInvalidExtent is returned for a root half extent that is not
	// strictly positive and finite on every axis.
	ErrInvalidExtent = errors.New("octree: half extent must be positive")

	// ErrOutOfBounds is returned when inserting a point the root box does
	// not contain.
	ErrOutOfBounds = errors.New("octree: point outside root bounds")
)
