package platform

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/tally/pkg/adapters/fs"
	"github.com/aretw0/tally/pkg/core"
)

// options holds the internal configuration for a tally store.
type options struct {
	repository   core.Repository
	logger       *slog.Logger
	scheduler    core.Scheduler
	delay        time.Duration
	seed         func(core.Date) []core.Record
	readOnly     bool
	watch        bool
	unguarded    bool
	registerer   prometheus.Registerer
	errorHandler func(error)
	now          func() time.Time
	workDir      string
	serializer   fs.Serializer
	format       string
	devSafety    bool
	forceTemp    bool
}

// Option defines a functional option for configuring a store.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		devSafety: true,
	}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithRepository injects a custom repository (e.g. a mock). The path given
// to Open is ignored and the filesystem adapter is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithLogger sets the logger for the store and its repository.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithScheduler replaces the wall-clock timer that drives autosave, e.g.
// with a schedule.Manual in tests.
func WithScheduler(s core.Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithDelay sets how long the store waits after the last edit before
// committing. Zero means tally.DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		o.delay = d
	}
}

// WithSeed sets the records a store starts with when the canonical file does
// not exist yet.
func WithSeed(seed func(today core.Date) []core.Record) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithReadOnly opens the store in read-only mode.
// Mutations return core.ErrReadOnly, nothing is ever written, and the dev
// sandbox is bypassed since the real file cannot be harmed.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithWatch reports edits made to the canonical file by other programs as
// core.EventExternalChange.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.watch = enabled
	}
}

// WithUnguarded disables the check that refuses to overwrite a canonical file
// modified on disk since it was read.
func WithUnguarded(enabled bool) Option {
	return func(o *options) {
		o.unguarded = enabled
	}
}

// WithRegisterer registers the store metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithErrorHandler registers a callback for failures that happen away from
// the caller: autosave commits and watcher errors.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithNow overrides the clock used for metadata, snapshot names and "today".
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithWorkDir sets where snapshots of a store without a canonical path go.
// Defaults to the current directory.
func WithWorkDir(dir string) Option {
	return func(o *options) {
		o.workDir = dir
	}
}

// WithSerializer forces a serializer regardless of the file extension.
func WithSerializer(s fs.Serializer) Option {
	return func(o *options) {
		o.serializer = s
	}
}

// WithFormat forces one of the built-in formats by extension (".json", ".yaml").
func WithFormat(ext string) Option {
	return func(o *options) {
		o.format = ext
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or
// `go test`. By default (true) the canonical file is re-rooted into a
// temporary directory so development runs never touch real data.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithForceTemp forces the sandbox even outside development runs.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}
