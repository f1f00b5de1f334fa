package tally

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/tally/pkg/core"
)

// DefaultDelay is how long a store waits after the last edit before committing.
const DefaultDelay = 1200 * time.Millisecond

// Config configures a Store.
type Config struct {
	// Repository is where the document is committed. Its path may be empty
	// for a scratch store that has no canonical file yet.
	Repository core.Repository
	// Scheduler drives debounced commits; a wall-clock timer when nil.
	Scheduler core.Scheduler
	// Delay between the last edit and the commit; DefaultDelay when zero.
	Delay time.Duration
	// Seed builds the initial collection on first run; SampleRecords when nil.
	Seed func(today core.Date) []core.Record
	// ReadOnly stores refuse mutations and never write.
	ReadOnly bool
	// Watch forwards external modifications of the canonical file as events.
	Watch bool
	// Now defaults to time.Now.
	Now          func() time.Time
	Logger       *slog.Logger
	ErrorHandler func(error)
	// Registerer receives the store metrics; unregistered when nil.
	Registerer prometheus.Registerer
}
