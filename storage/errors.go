package storage

import "errors"

var (
	// ErrLocked indicates another process holds the data directory.
	ErrLocked = errors.New("storage: data directory is locked by another process")

	// ErrNotInitialized indicates the store holds no vault yet.
	ErrNotInitialized = errors.New("storage: vault not initialized")

	// ErrAlreadyInitialized indicates Init was called on a store that holds a vault.
	ErrAlreadyInitialized = errors.New("storage: vault already initialized")

	// ErrCorruptState indicates a persisted record could not be decoded.
	ErrCorruptState = errors.New("storage: corrupt state record")

	// ErrUnsupportedVersion indicates a state record from an unknown format version.
	ErrUnsupportedVersion = errors.New("storage: unsupported state version")

	// ErrIOFailure indicates a file or database error.
	ErrIOFailure = errors.New("storage: I/O failure")
)
