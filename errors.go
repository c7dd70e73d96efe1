package segcache

import "errors"

// Sentinel errors for segcache. All of them report programmer errors;
// an operation that fails leaves the cache unchanged.
var (
	// ErrInvalidCapacity is returned by New when capacity is not positive.
	ErrInvalidCapacity = errors.New("segcache: invalid capacity")

	// ErrDuplicateKey is returned by Segment.Put when the key is already
	// resident in that segment. Put never overwrites.
	ErrDuplicateKey = errors.New("segcache: an entry with same key has already been added")

	// ErrInvalidWeight is returned by Segment.Put when the weight function
	// yields a value below 1.
	ErrInvalidWeight = errors.New("segcache: weight must be at least 1")

	// ErrInvalidKey is returned by Segment.Put for a key that is not equal
	// to itself, such as one holding a NaN float. Such a key could never
	// be found, removed or replaced.
	ErrInvalidKey = errors.New("segcache: key is not equal to itself")

	// ErrSegmentClosed is returned by Segment.Put after Segment.Close.
	ErrSegmentClosed = errors.New("segcache: segment closed")
)
