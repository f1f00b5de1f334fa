package tally

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/tally/pkg/core"
)

type metrics struct {
	commits        *prometheus.CounterVec
	commitDuration prometheus.Histogram
	dirty          prometheus.Gauge
	records        prometheus.Gauge
	snapshots      *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_commits_total",
			Help: "Commits to the canonical file by result.",
		}, []string{"result"}),
		commitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tally_commit_duration_seconds",
			Help:    "Time spent in the atomic commit protocol.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		dirty: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tally_dirty",
			Help: "1 while in-memory state differs from the canonical file.",
		}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tally_records",
			Help: "Records held by the store.",
		}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_snapshots_total",
			Help: "Snapshots written by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.commits, m.commitDuration, m.dirty, m.records, m.snapshots)
	}
	return m
}

func commitResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, core.ErrConflict):
		return "conflict"
	default:
		return "failure"
	}
}

func (m *metrics) setDirty(dirty bool) {
	if dirty {
		m.dirty.Set(1)
	} else {
		m.dirty.Set(0)
	}
}
