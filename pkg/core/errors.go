package core

import "errors"

// Load errors.
var (
	// ErrNotFound means the canonical file does not exist yet (first run).
	ErrNotFound = errors.New("canonical file not found")
	// ErrParse means the canonical file exists but cannot be decoded.
	ErrParse = errors.New("canonical file is malformed")
)

// Commit and snapshot errors.
var (
	ErrWrite    = errors.New("commit failed")
	ErrConflict = errors.New("canonical file changed on disk since it was last read")
	ErrSnapshot = errors.New("snapshot failed")
	ErrNoPath   = errors.New("no canonical path set")
	ErrReadOnly = errors.New("store is in read-only mode")
)

// Collection errors.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateID    = errors.New("record id already exists")
	ErrInvalidRecord  = errors.New("invalid record")
	ErrClosed         = errors.New("store is closed")
)
