package core

import (
	"context"
	"time"
)

type contextKey string

// ForceCommitKey marks a commit context as allowed to overwrite a canonical
// file that changed on disk since it was last read.
const ForceCommitKey contextKey = "force_commit"

// WithForce returns a context that lets a commit overwrite external edits.
func WithForce(ctx context.Context) context.Context {
	return context.WithValue(ctx, ForceCommitKey, true)
}

// IsForced reports whether ctx carries ForceCommitKey set to true.
func IsForced(ctx context.Context) bool {
	v, ok := ctx.Value(ForceCommitKey).(bool)
	return ok && v
}

// Repository is the durable side of a store: one canonical location holding
// a whole Document.
type Repository interface {
	// Load reads the canonical document.
	// It returns ErrNotFound when nothing was committed yet and ErrParse when
	// the stored bytes cannot be decoded.
	Load(ctx context.Context) (Document, error)

	// Commit replaces the canonical document. A failed commit leaves the
	// previous canonical content untouched and wraps ErrWrite.
	Commit(ctx context.Context, doc Document) error

	// Path returns the canonical location.
	Path() string
}

// Relocatable is implemented by repositories that can be pointed at a new
// canonical location ("save as").
type Relocatable interface {
	Relocate(path string) (Repository, error)
}

// Watchable is implemented by repositories that can report changes made to
// the canonical location by someone else.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// Encoder turns a document into the bytes a repository would store.
type Encoder interface {
	Encode(doc Document) ([]byte, error)
}

// Snapshottable is implemented by repositories that can write independent,
// timestamped copies of editable content next to the canonical location.
type Snapshottable interface {
	Snapshot(text string) (string, error)
}

// Scheduler is the clock capability behind debounced commits.
// Arm replaces any pending callback; Cancel drops it.
type Scheduler interface {
	Arm(delay time.Duration, fn func())
	Cancel()
}
