package platform

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aretw0/tally/pkg/adapters/fs"
	"github.com/aretw0/tally/pkg/tally"
)

// Open wires a filesystem repository for path into a store and loads it.
//
//	store, err := platform.Open(ctx, "projects.json", platform.WithLogger(logger))
//
// An empty path opens a scratch store that is saved with SaveAs.
func Open(ctx context.Context, path string, opts ...Option) (*tally.Store, error) {
	o := apply(opts)

	repo := o.repository
	if repo == nil {
		r, err := newRepository(path, o)
		if err != nil {
			return nil, err
		}
		repo = r
	}

	return tally.Open(ctx, tally.Config{
		Repository:   repo,
		Scheduler:    o.scheduler,
		Delay:        o.delay,
		Seed:         o.seed,
		ReadOnly:     o.readOnly,
		Watch:        o.watch,
		Now:          o.now,
		Logger:       o.logger,
		ErrorHandler: o.errorHandler,
		Registerer:   o.registerer,
	})
}

// NewRepository builds the filesystem repository Open would use for path,
// for callers that only need snapshots or raw loads.
func NewRepository(path string, opts ...Option) (*fs.Repository, error) {
	return newRepository(path, apply(opts))
}

func newRepository(path string, o *options) (*fs.Repository, error) {
	useTemp := o.forceTemp || (IsDevRun() && o.devSafety && !o.readOnly)
	resolved := ResolvePath(path, useTemp)

	if resolved != "" {
		abs, err := filepath.Abs(resolved)
		if err != nil {
			return nil, err
		}
		resolved = abs
	}

	if o.logger != nil && resolved != path && useTemp {
		o.logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", path, "resolved_path", resolved)
	}

	serializer := o.serializer
	if serializer == nil && o.format != "" {
		s, ok := fs.DefaultSerializers()[o.format]
		if !ok {
			return nil, fmt.Errorf("unknown format: %s", o.format)
		}
		serializer = s
	}

	return fs.NewRepository(fs.Config{
		Path:         resolved,
		Serializer:   serializer,
		Unguarded:    o.unguarded,
		WorkDir:      o.workDir,
		Now:          o.now,
		Logger:       o.logger,
		ErrorHandler: o.errorHandler,
	}), nil
}
