package tally

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"

	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/schedule"
)

// Store owns the record collection and keeps it in sync with the canonical
// file: every mutation marks it dirty and re-arms a debounced commit.
type Store struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics
	bus     *broker
	sched   core.Scheduler
	delay   time.Duration
	now     func() time.Time

	// commitMu serializes commits; it is always taken before mu.
	commitMu sync.Mutex

	mu         sync.RWMutex
	repo       core.Repository
	doc        core.Document
	dirty      bool
	gen        uint64
	closed     bool
	commits    int
	lastCommit *time.Time
	lastErr    error

	watchCancel context.CancelFunc
	watchDone   chan struct{}
}

// Open loads the canonical document behind cfg.Repository.
//
// When the file does not exist yet the store is seeded and committed right
// away; a failure of that first commit is returned. A file that cannot be
// decoded aborts Open and is left untouched. A repository without a path
// yields a scratch store that stays dirty until SaveAs.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Repository == nil {
		return nil, errors.New("tally: a repository is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = schedule.NewTimer()
	}
	if cfg.Seed == nil {
		cfg.Seed = SampleRecords
	}

	s := &Store{
		cfg:     cfg,
		logger:  cfg.Logger,
		metrics: newMetrics(cfg.Registerer),
		bus:     newBroker(cfg.Logger),
		sched:   cfg.Scheduler,
		delay:   cfg.Delay,
		now:     cfg.Now,
		repo:    cfg.Repository,
	}

	if s.repo.Path() == "" {
		s.doc = s.seeded()
		s.dirty = true
		s.gen = 1
		s.debug("opened scratch store", "records", len(s.doc.Records))
		s.metrics.records.Set(float64(len(s.doc.Records)))
		s.metrics.setDirty(true)
		return s, nil
	}

	doc, err := s.repo.Load(ctx)
	switch {
	case errors.Is(err, core.ErrNotFound):
		if cfg.ReadOnly {
			return nil, err
		}
		doc = s.seeded()
		now := s.now().UTC()
		doc.Meta.LastModified = &now
		if err := s.repo.Commit(ctx, doc); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", s.repo.Path(), err)
		}
		s.commits = 1
		s.lastCommit = &now
		s.metrics.commits.WithLabelValues(commitResult(nil)).Inc()
		s.info("created canonical file", "path", s.repo.Path(), "records", len(doc.Records))
	case err != nil:
		return nil, err
	default:
		doc.Sanitize()
	}

	repaired := repairIDs(&doc)
	s.doc = doc
	s.metrics.records.Set(float64(len(doc.Records)))

	if cfg.Watch {
		s.startWatch(s.repo)
	}

	if repaired && !cfg.ReadOnly {
		s.debug("assigned missing or duplicate record ids", "path", s.repo.Path())
		s.MarkDirty()
	}
	return s, nil
}

func (s *Store) seeded() core.Document {
	doc := core.NewDocument(s.now())
	for _, r := range s.cfg.Seed(core.DateOf(s.now())) {
		r.Normalize()
		doc.Records = append(doc.Records, r.Clone())
	}
	repairIDs(&doc)
	return doc
}

// repairIDs gives records loaded without an id, or with one already taken,
// a fresh id. It reports whether anything changed.
func repairIDs(doc *core.Document) bool {
	seen := make(map[string]bool, len(doc.Records))
	changed := false
	for i := range doc.Records {
		r := &doc.Records[i]
		if r.ID == "" || seen[r.ID] {
			r.ID = uuid.NewString()
			changed = true
		}
		seen[r.ID] = true
	}
	return changed
}

// Path returns the canonical path, empty for a scratch store.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.Path()
}

// IsDirty reports whether the collection has edits not yet committed.
func (s *Store) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.doc.Records)
}

// Version returns the schema version of the held document.
func (s *Store) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Version
}

// Meta returns a copy of the document metadata.
func (s *Store) Meta() core.Meta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone().Meta
}

// Document returns a deep copy of the whole held document.
func (s *Store) Document() core.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// All returns copies of every record in insertion order.
func (s *Store) All() []core.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Record, len(s.doc.Records))
	for i, r := range s.doc.Records {
		out[i] = r.Clone()
	}
	return out
}

// Find returns a copy of the record with the given id.
func (s *Store) Find(id string) (core.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.doc.Records, id); i >= 0 {
		return s.doc.Records[i].Clone(), true
	}
	return core.Record{}, false
}

func indexOf(records []core.Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends r to the collection and returns the stored copy.
// An empty id is replaced with a new UUID; unset status and priority take the
// defaults of core.NewRecord.
func (s *Store) Add(r core.Record) (core.Record, error) {
	r = r.Clone()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = core.StatusNotStarted
	}
	if r.Priority == "" {
		r.Priority = core.PriorityMedium
	}
	r.Normalize()
	if err := validateRecord(r); err != nil {
		return core.Record{}, err
	}

	err := s.update(func(doc *core.Document) error {
		if indexOf(doc.Records, r.ID) >= 0 {
			return fmt.Errorf("%w: %s", core.ErrDuplicateID, r.ID)
		}
		doc.Records = append(doc.Records, r.Clone())
		return nil
	})
	if err != nil {
		return core.Record{}, err
	}
	return r, nil
}

// Remove deletes the record with the given id.
func (s *Store) Remove(id string) error {
	return s.update(func(doc *core.Document) error {
		i := indexOf(doc.Records, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", core.ErrRecordNotFound, id)
		}
		doc.Records = append(doc.Records[:i:i], doc.Records[i+1:]...)
		return nil
	})
}

// Mutate applies fn to a copy of the record and swaps the result in.
// The id cannot be changed. A result that fails validation is discarded and
// the stored record is left as it was. fn must not call back into the store.
func (s *Store) Mutate(id string, fn func(r *core.Record)) error {
	return s.update(func(doc *core.Document) error {
		i := indexOf(doc.Records, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", core.ErrRecordNotFound, id)
		}
		c := doc.Records[i].Clone()
		fn(&c)
		c.ID = doc.Records[i].ID
		c.Normalize()
		if err := validateRecord(c); err != nil {
			return err
		}
		doc.Records[i] = c
		return nil
	})
}

// Duplicate appends a copy of the record under a new id, named "<name> (Copy)".
func (s *Store) Duplicate(id string) (core.Record, error) {
	var dup core.Record
	err := s.update(func(doc *core.Document) error {
		i := indexOf(doc.Records, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", core.ErrRecordNotFound, id)
		}
		dup = doc.Records[i].Clone()
		dup.ID = uuid.NewString()
		dup.Name += " (Copy)"
		doc.Records = append(doc.Records, dup.Clone())
		return nil
	})
	if err != nil {
		return core.Record{}, err
	}
	return dup, nil
}

// Start moves the record to in-progress, assigning it today if it had no
// assigned date.
func (s *Store) Start(id string) error {
	today := core.DateOf(s.now())
	return s.Mutate(id, func(r *core.Record) {
		r.Status = core.StatusInProgress
		if r.Assigned == nil {
			r.Assigned = core.DatePtr(today)
		}
	})
}

// Complete marks the record completed, dating it today if it had no
// completed date.
func (s *Store) Complete(id string) error {
	today := core.DateOf(s.now())
	return s.Mutate(id, func(r *core.Record) {
		r.Status = core.StatusCompleted
		if r.Completed == nil {
			r.Completed = core.DatePtr(today)
		}
	})
}

// update runs fn against the document under the write lock. When fn succeeds
// the store becomes dirty before any notification goes out.
func (s *Store) update(fn func(doc *core.Document) error) error {
	becameDirty, records, err := s.apply(fn)
	if err != nil {
		return err
	}

	s.metrics.records.Set(float64(records))
	s.metrics.setDirty(true)

	events := []core.Event{{Type: core.EventCollectionChanged, Time: s.now()}}
	if becameDirty {
		events = append(events, core.Event{Type: core.EventDirtyChanged, Dirty: true, Time: s.now()})
	}
	s.bus.publish(events...)
	s.arm()
	return nil
}

// apply runs fn under the write lock. The lock is released even when fn
// panics, so a failing editor callback cannot wedge the store.
func (s *Store) apply(fn func(doc *core.Document) error) (becameDirty bool, records int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, 0, core.ErrClosed
	}
	if s.cfg.ReadOnly {
		return false, 0, core.ErrReadOnly
	}
	if err := fn(&s.doc); err != nil {
		return false, 0, err
	}
	s.gen++
	becameDirty = !s.dirty
	s.dirty = true
	return becameDirty, len(s.doc.Records), nil
}

// MarkDirty flags the collection as diverged from the canonical file and
// restarts the commit delay. Edits made through the store call it already.
func (s *Store) MarkDirty() {
	s.mu.Lock()
	if s.closed || s.cfg.ReadOnly {
		s.mu.Unlock()
		return
	}
	s.gen++
	becameDirty := !s.dirty
	s.dirty = true
	s.mu.Unlock()

	s.metrics.setDirty(true)
	if becameDirty {
		s.bus.publish(core.Event{Type: core.EventDirtyChanged, Dirty: true, Time: s.now()})
	}
	s.arm()
}

// arm restarts the commit delay. Scratch stores have nowhere to commit to.
func (s *Store) arm() {
	s.mu.RLock()
	skip := s.closed || s.repo.Path() == ""
	s.mu.RUnlock()
	if skip {
		return
	}
	s.sched.Arm(s.delay, s.autosave)
}

// autosave commits on timer expiry. Nobody waits for its result, so a
// failure goes to the error handler as well as the CommitFailed event.
func (s *Store) autosave() {
	if err := s.commit(context.Background(), nil); err != nil && s.cfg.ErrorHandler != nil {
		s.cfg.ErrorHandler(err)
	}
}

// FlushNow cancels the pending commit and commits synchronously if the store
// is dirty. It writes nothing when the store is clean.
func (s *Store) FlushNow(ctx context.Context) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return core.ErrClosed
	}
	s.sched.Cancel()
	return s.commit(ctx, nil)
}

// commit writes the held document to target, or to the current repository
// when target is nil. Writing to the current repository is skipped while
// clean; a new target is always written. Events go out after commitMu is
// released so subscribers may flush again.
func (s *Store) commit(ctx context.Context, target core.Repository) error {
	events, err := s.commitLocked(ctx, target)
	s.bus.publish(events...)
	return err
}

func (s *Store) commitLocked(ctx context.Context, target core.Repository) ([]core.Event, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.RLock()
	relocating := target != nil
	if !relocating {
		target = s.repo
	}
	if !s.dirty && !relocating {
		s.mu.RUnlock()
		return nil, nil
	}
	gen := s.gen
	doc := s.doc.Clone()
	s.mu.RUnlock()

	if target.Path() == "" {
		return nil, core.ErrNoPath
	}

	now := s.now().UTC()
	doc.Meta.LastModified = &now

	start := time.Now()
	err := target.Commit(ctx, doc)
	s.metrics.commitDuration.Observe(time.Since(start).Seconds())
	s.metrics.commits.WithLabelValues(commitResult(err)).Inc()

	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Error("commit failed, edits remain unsaved", "path", target.Path(), "error", err)
		}
		return []core.Event{{Type: core.EventCommitFailed, Err: err, Path: target.Path(), Time: s.now()}}, err
	}

	s.mu.Lock()
	if relocating {
		s.repo = target
	}
	s.doc.Meta.LastModified = &now
	s.commits++
	s.lastCommit = &now
	s.lastErr = nil
	cleaned := s.dirty && s.gen == gen
	if cleaned {
		s.dirty = false
	}
	dirty := s.dirty
	s.mu.Unlock()

	s.metrics.setDirty(dirty)
	s.debug("committed", "path", target.Path(), "records", len(doc.Records))

	var events []core.Event
	if cleaned {
		events = append(events, core.Event{Type: core.EventDirtyChanged, Dirty: false, Time: s.now()})
	}
	events = append(events, core.Event{Type: core.EventCommitSucceeded, Path: target.Path(), Time: s.now()})
	return events, nil
}

// SaveAs commits the collection to a new canonical path and keeps using it.
// The previous canonical file is left as it was.
func (s *Store) SaveAs(ctx context.Context, path string) error {
	s.mu.RLock()
	repo, closed := s.repo, s.closed
	s.mu.RUnlock()
	if closed {
		return core.ErrClosed
	}
	if s.cfg.ReadOnly {
		return core.ErrReadOnly
	}

	rel, ok := repo.(core.Relocatable)
	if !ok {
		return fmt.Errorf("%w: repository cannot be relocated", core.ErrWrite)
	}
	target, err := rel.Relocate(path)
	if err != nil {
		return err
	}

	s.sched.Cancel()
	if err := s.commit(core.WithForce(ctx), target); err != nil {
		if s.IsDirty() {
			s.arm()
		}
		return err
	}

	if s.cfg.Watch {
		s.stopWatch()
		s.startWatch(target)
	}
	s.info("saved to new location", "path", target.Path())
	return nil
}

// Reload replaces the collection with the canonical file, dropping unsaved
// edits. It is the answer to an external change the caller wants to accept.
func (s *Store) Reload(ctx context.Context) error {
	events, err := s.reloadLocked(ctx)
	s.bus.publish(events...)
	return err
}

func (s *Store) reloadLocked(ctx context.Context) ([]core.Event, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.RLock()
	repo, closed := s.repo, s.closed
	s.mu.RUnlock()
	if closed {
		return nil, core.ErrClosed
	}
	if repo.Path() == "" {
		return nil, core.ErrNoPath
	}

	doc, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	doc.Sanitize()
	repairIDs(&doc)

	s.sched.Cancel()
	s.mu.Lock()
	s.doc = doc
	s.gen++
	wasDirty := s.dirty
	s.dirty = false
	records := len(doc.Records)
	s.mu.Unlock()

	s.metrics.records.Set(float64(records))
	s.metrics.setDirty(false)
	s.debug("reloaded canonical file", "path", repo.Path(), "records", records)

	events := []core.Event{{Type: core.EventCollectionChanged, Time: s.now()}}
	if wasDirty {
		events = append(events, core.Event{Type: core.EventDirtyChanged, Dirty: false, Time: s.now()})
	}
	return events, nil
}

// Snapshot writes text to a new timestamped file without touching the
// canonical file, its backup, or the dirty state.
func (s *Store) Snapshot(text string) (string, error) {
	s.mu.RLock()
	repo := s.repo
	s.mu.RUnlock()

	snap, ok := repo.(core.Snapshottable)
	if !ok {
		return "", fmt.Errorf("%w: repository does not keep snapshots", core.ErrSnapshot)
	}
	path, err := snap.Snapshot(text)
	if err != nil {
		s.metrics.snapshots.WithLabelValues("failure").Inc()
		if s.logger != nil {
			s.logger.Warn("snapshot failed", "error", err)
		}
		return "", err
	}
	s.metrics.snapshots.WithLabelValues("success").Inc()
	s.debug("snapshot written", "path", path)
	s.bus.publish(core.Event{Type: core.EventSnapshotTaken, Path: path, Time: s.now()})
	return path, nil
}

// SnapshotCurrent snapshots the in-memory collection, unsaved edits included,
// in the format the repository commits.
func (s *Store) SnapshotCurrent() (string, error) {
	s.mu.RLock()
	repo := s.repo
	doc := s.doc.Clone()
	s.mu.RUnlock()

	enc, ok := repo.(core.Encoder)
	if !ok {
		return "", fmt.Errorf("%w: repository cannot encode documents", core.ErrSnapshot)
	}
	data, err := enc.Encode(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrSnapshot, err)
	}
	return s.Snapshot(string(data))
}

// Subscribe registers fn for every event, delivered synchronously and in
// order. fn may call back into the store. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(core.Event)) (cancel func()) {
	return s.bus.subscribe(fn)
}

// Events returns a channel receiving every event. Events that do not fit in
// the buffer are dropped. The channel is closed when the store closes.
func (s *Store) Events(size int) <-chan core.Event {
	return s.bus.channel(size)
}

// Close flushes pending edits and releases the store. If the flush fails the
// store stays open and the error is returned; use Discard to give up.
// A scratch store has nowhere to flush to, so Close returns core.ErrNoPath
// while it is dirty; call SaveAs first or Discard it.
func (s *Store) Close(ctx context.Context) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil
	}

	s.sched.Cancel()
	if err := s.commit(ctx, nil); err != nil {
		return err
	}
	s.shutdown()
	return nil
}

// Discard releases the store without committing pending edits.
func (s *Store) Discard() {
	s.sched.Cancel()
	s.shutdown()
}

func (s *Store) shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.stopWatch()
	s.bus.close()
	s.debug("store closed", "path", s.Path())
}

func (s *Store) startWatch(repo core.Repository) {
	w, ok := repo.(core.Watchable)
	if !ok || repo.Path() == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	events, err := w.Watch(ctx)
	if err != nil {
		cancel()
		if s.logger != nil {
			s.logger.Warn("could not watch canonical file", "path", repo.Path(), "error", err)
		}
		if s.cfg.ErrorHandler != nil {
			s.cfg.ErrorHandler(err)
		}
		return
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.watchCancel = cancel
	s.watchDone = done
	s.mu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(done)
		for e := range events {
			if s.logger != nil {
				s.logger.Warn("canonical file changed on disk", "path", e.Path)
			}
			s.bus.publish(e)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		if s.cfg.ErrorHandler != nil {
			s.cfg.ErrorHandler(fmt.Errorf("watch forwarder panic: %w", err))
		} else if s.logger != nil {
			s.logger.Error("watch forwarder panic", "error", err)
		}
	}))
}

func (s *Store) stopWatch() {
	s.mu.Lock()
	cancel, done := s.watchCancel, s.watchDone
	s.watchCancel, s.watchDone = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.debug("watch forwarder did not stop in time")
	}
}

func (s *Store) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Store) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
