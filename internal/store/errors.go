package store

import "errors"

var (
	// ErrContentTooLarge reports content exceeding the configured byte
	// ceiling. The entry is rejected before anything is written.
	ErrContentTooLarge = errors.New("entry content exceeds maximum size")

	// ErrInvalidKind reports an entry kind outside the closed
	// charwise/linewise/blockwise set.
	ErrInvalidKind = errors.New("invalid entry kind")

	// ErrLockTimeout reports that a write lock on the shared backing
	// file could not be acquired within the configured bound.
	ErrLockTimeout = errors.New("timed out waiting for store write lock")

	// ErrNotFound reports a missing entry or settings key.
	ErrNotFound = errors.New("not found")
)
