package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string     `json:"path"`
	TempPath      string     `json:"temp_path"`
	BackupPath    string     `json:"backup_path"`
	Guarded       bool       `json:"guarded"`
	Commits       int        `json:"commits"`
	LastCommit    *time.Time `json:"last_commit,omitempty"`
	WatcherActive bool       `json:"watcher_active"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RepositoryState{
		Path:          r.path,
		TempPath:      TempPath(r.path),
		BackupPath:    BackupPath(r.path),
		Guarded:       !r.config.Unguarded,
		Commits:       r.commits,
		LastCommit:    r.lastCommit,
		WatcherActive: r.watcherActive,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcherActive = active
}
