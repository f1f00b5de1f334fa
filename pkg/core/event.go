package core

import (
	"fmt"
	"time"
)

// EventType identifies what a store notification is about.
type EventType string

const (
	EventDirtyChanged      EventType = "DIRTY_CHANGED"
	EventCollectionChanged EventType = "COLLECTION_CHANGED"
	EventCommitSucceeded   EventType = "COMMIT_SUCCEEDED"
	EventCommitFailed      EventType = "COMMIT_FAILED"
	EventSnapshotTaken     EventType = "SNAPSHOT_TAKEN"
	EventExternalChange    EventType = "EXTERNAL_CHANGE"
)

// Event is a notification emitted by a store.
// Dirty is only meaningful for EventDirtyChanged, Err for EventCommitFailed,
// Path for commit, snapshot and external change events.
type Event struct {
	Type  EventType
	Dirty bool
	Err   error
	Path  string
	Time  time.Time
}

func (e Event) String() string {
	switch e.Type {
	case EventDirtyChanged:
		return fmt.Sprintf("%s dirty=%t", e.Type, e.Dirty)
	case EventCommitFailed:
		return fmt.Sprintf("%s %s: %v", e.Type, e.Path, e.Err)
	case EventCollectionChanged:
		return string(e.Type)
	default:
		return fmt.Sprintf("%s %s", e.Type, e.Path)
	}
}
