package tally

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path        string     `json:"path"`
	Scratch     bool       `json:"scratch"`
	Dirty       bool       `json:"dirty"`
	Records     int        `json:"records"`
	Version     int        `json:"version"`
	Commits     int        `json:"commits"`
	LastCommit  *time.Time `json:"last_commit,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	ReadOnly    bool       `json:"read_only"`
	Watching    bool       `json:"watching"`
	Subscribers int        `json:"subscribers"`
	Closed      bool       `json:"closed"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := StoreState{
		Path:        s.repo.Path(),
		Scratch:     s.repo.Path() == "",
		Dirty:       s.dirty,
		Records:     len(s.doc.Records),
		Version:     s.doc.Version,
		Commits:     s.commits,
		LastCommit:  s.lastCommit,
		ReadOnly:    s.cfg.ReadOnly,
		Watching:    s.watchCancel != nil,
		Subscribers: s.bus.count(),
		Closed:      s.closed,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
