package tally

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/tally/internal/platform"
	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/schedule"
	engine "github.com/aretw0/tally/pkg/tally"
)

// --- Types ---

type (
	Store      = engine.Store
	StoreState = engine.StoreState
	Record     = core.Record
	Document   = core.Document
	Meta       = core.Meta
	Date       = core.Date
	Status     = core.Status
	Priority   = core.Priority
	Event      = core.Event
	EventType  = core.EventType
)

// --- Events ---

const (
	EventDirtyChanged      = core.EventDirtyChanged
	EventCollectionChanged = core.EventCollectionChanged
	EventCommitSucceeded   = core.EventCommitSucceeded
	EventCommitFailed      = core.EventCommitFailed
	EventSnapshotTaken     = core.EventSnapshotTaken
	EventExternalChange    = core.EventExternalChange
)

// --- Errors ---

var (
	ErrNotFound       = core.ErrNotFound
	ErrParse          = core.ErrParse
	ErrWrite          = core.ErrWrite
	ErrConflict       = core.ErrConflict
	ErrSnapshot       = core.ErrSnapshot
	ErrNoPath         = core.ErrNoPath
	ErrReadOnly       = core.ErrReadOnly
	ErrRecordNotFound = core.ErrRecordNotFound
	ErrDuplicateID    = core.ErrDuplicateID
	ErrInvalidRecord  = core.ErrInvalidRecord
	ErrClosed         = core.ErrClosed
)

// DefaultDelay is how long a store waits after the last edit before committing.
const DefaultDelay = engine.DefaultDelay

// --- Configuration ---

// Option defines a functional option for configuring a store.
type Option = platform.Option

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithScheduler replaces the wall-clock autosave timer.
func WithScheduler(s core.Scheduler) Option {
	return platform.WithScheduler(s)
}

// WithDelay sets the autosave delay.
func WithDelay(d time.Duration) Option {
	return platform.WithDelay(d)
}

// WithSeed sets the records a new file starts with.
func WithSeed(seed func(today core.Date) []core.Record) Option {
	return platform.WithSeed(seed)
}

// WithReadOnly opens the store in read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithWatch reports edits made to the file by other programs.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithUnguarded lets commits overwrite a file that changed on disk.
func WithUnguarded(enabled bool) Option {
	return platform.WithUnguarded(enabled)
}

// WithRegisterer registers the store metrics.
func WithRegisterer(reg prometheus.Registerer) Option {
	return platform.WithRegisterer(reg)
}

// WithErrorHandler receives autosave and watcher failures.
func WithErrorHandler(fn func(error)) Option {
	return platform.WithErrorHandler(fn)
}

// WithFormat forces ".json" or ".yaml" regardless of the file extension.
func WithFormat(ext string) Option {
	return platform.WithFormat(ext)
}

// WithWorkDir sets where snapshots of an unsaved store are written.
func WithWorkDir(dir string) Option {
	return platform.WithWorkDir(dir)
}

// WithDevSafety controls the `go run` sandbox.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// --- Factory ---

// Open loads the project file at path into a store, creating it with sample
// projects if it does not exist. An empty path opens an unsaved store.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	return platform.Open(ctx, path, opts...)
}

// NewManualClock returns a virtual clock for driving autosave in tests.
func NewManualClock(start time.Time) *schedule.Manual {
	return schedule.NewManual(start)
}

// WithForce returns a context that lets a commit overwrite external edits.
func WithForce(ctx context.Context) context.Context {
	return core.WithForce(ctx)
}

// --- Safety & Utils ---

// ResolvePath determines the file actually used based on safety rules.
func ResolvePath(userPath string, forceTemp bool) string {
	return platform.ResolvePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindProjectFile looks upwards from startDir for a projects file.
func FindProjectFile(startDir string) (string, error) {
	return platform.FindCanonical(startDir)
}
