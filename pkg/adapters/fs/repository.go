package fs

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/tally/pkg/core"
)

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	Serializer   Serializer  // nil picks one from the extension of Path
	Perm         os.FileMode // 0644 when zero
	Unguarded    bool        // skip the on-disk modification check before promoting
	WorkDir      string      // base for snapshots taken without a canonical path
	Now          func() time.Time
	Logger       *slog.Logger
	// ErrorHandler receives watcher failures. Commit errors are returned instead.
	ErrorHandler func(error)
}

// fingerprint remembers what this process last saw under the canonical name.
type fingerprint struct {
	known  bool
	exists bool
	sum    [sha256.Size]byte
}

func (f fingerprint) matches(data []byte, exists bool) bool {
	if exists != f.exists {
		return false
	}
	return !exists || sha256.Sum256(data) == f.sum
}

// Repository implements core.Repository on a single canonical file, with a
// temp file, a one-deep backup slot and a snapshot history next to it.
type Repository struct {
	path       string
	config     Config
	serializer Serializer
	snapshots  *Snapshotter

	// writeMu serializes the commit protocol and guards fp.
	writeMu sync.Mutex
	fp      fingerprint

	mu            sync.RWMutex
	commits       int
	lastCommit    *time.Time
	watcherActive bool
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.Perm == 0 {
		config.Perm = 0644
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	serializer := config.Serializer
	if serializer == nil {
		serializer = SerializerFor(config.Path)
	}
	return &Repository{
		path:       config.Path,
		config:     config,
		serializer: serializer,
		snapshots: &Snapshotter{
			Canonical: config.Path,
			WorkDir:   config.WorkDir,
			Now:       config.Now,
		},
	}
}

// Path returns the canonical file path.
func (r *Repository) Path() string {
	return r.path
}

// Snapshots returns the snapshot writer bound to this canonical path.
func (r *Repository) Snapshots() *Snapshotter {
	return r.snapshots
}

// Encode serializes doc the same way Commit would.
func (r *Repository) Encode(doc core.Document) ([]byte, error) {
	return r.serializer.Encode(doc)
}

// Relocate returns a repository with the same settings and a new canonical path.
// The serializer follows the new extension unless one was set explicitly.
func (r *Repository) Relocate(path string) (core.Repository, error) {
	if path == "" {
		return nil, core.ErrNoPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg := r.config
	cfg.Path = abs
	return NewRepository(cfg), nil
}

// Load reads and decodes the canonical file.
func (r *Repository) Load(ctx context.Context) (core.Document, error) {
	if r.path == "" {
		return core.Document{}, core.ErrNoPath
	}
	if err := ctx.Err(); err != nil {
		return core.Document{}, err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, iofs.ErrNotExist) {
		r.fp = fingerprint{known: true}
		return core.Document{}, fmt.Errorf("%w: %s", core.ErrNotFound, r.path)
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to read %s: %w", r.path, err)
	}

	doc, err := r.serializer.Decode(data)
	if err != nil {
		return core.Document{}, fmt.Errorf("%w: %s: %w", core.ErrParse, r.path, err)
	}
	if doc.Version > core.SchemaVersion {
		return core.Document{}, fmt.Errorf("%w: %s: unsupported schema version %d", core.ErrParse, r.path, doc.Version)
	}

	r.fp = fingerprint{known: true, exists: true, sum: sha256.Sum256(data)}
	r.debug("loaded canonical file", "path", r.path, "records", len(doc.Records))
	return doc, nil
}

// Commit serializes doc and promotes it to the canonical file.
//
// Unless the repository is unguarded or ctx carries core.ForceCommitKey, the
// commit is refused with core.ErrConflict when the canonical file no longer
// holds what this repository last loaded or committed.
func (r *Repository) Commit(ctx context.Context, doc core.Document) error {
	if r.path == "" {
		return core.ErrNoPath
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrWrite, err)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	data, err := r.serializer.Encode(doc)
	if err != nil {
		return fmt.Errorf("%w: failed to serialize: %w", core.ErrWrite, err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create directories: %w", core.ErrWrite, err)
	}

	guard := !r.config.Unguarded && !core.IsForced(ctx) && r.fp.known
	verify := func(current []byte, exists bool) error {
		if guard && !r.fp.matches(current, exists) {
			return fmt.Errorf("%w: %s", core.ErrConflict, r.path)
		}
		return nil
	}

	start := r.config.Now()
	if err := commitFile(r.path, data, r.config.Perm, verify); err != nil {
		r.report(err)
		return fmt.Errorf("%w: %w", core.ErrWrite, err)
	}

	r.fp = fingerprint{known: true, exists: true, sum: sha256.Sum256(data)}

	r.mu.Lock()
	r.commits++
	r.lastCommit = &start
	r.mu.Unlock()

	r.debug("committed canonical file", "path", r.path, "bytes", len(data), "records", len(doc.Records))
	return nil
}

// Snapshot writes text into the history directory next to the canonical file.
func (r *Repository) Snapshot(text string) (string, error) {
	return r.snapshots.Write(text)
}

// changedOnDisk reports whether the canonical file differs from what this
// repository last loaded or committed. data is the current content, nil when
// the file is gone.
func (r *Repository) changedOnDisk() (changed bool, data []byte) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	data, err := os.ReadFile(r.path)
	exists := err == nil
	if err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return false, nil
	}
	if !r.fp.known {
		return false, data
	}
	return !r.fp.matches(data, exists), data
}

func (r *Repository) debug(msg string, args ...any) {
	if r.config.Logger != nil {
		r.config.Logger.Debug(msg, args...)
	}
}

func (r *Repository) report(err error) {
	if r.config.Logger != nil {
		r.config.Logger.Debug("commit aborted", "path", r.path, "error", err)
	}
}

var _ core.Repository = (*Repository)(nil)
var _ core.Relocatable = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
var _ core.Encoder = (*Repository)(nil)
var _ core.Snapshottable = (*Repository)(nil)
