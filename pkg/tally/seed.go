package tally

import (
	"github.com/google/uuid"

	"github.com/aretw0/tally/pkg/core"
)

// SampleRecords is the collection a store starts with when no canonical file
// exists yet.
func SampleRecords(today core.Date) []core.Record {
	return []core.Record{
		{
			ID:       uuid.NewString(),
			Name:     "Landing Page Revamp",
			Status:   core.StatusInProgress,
			Priority: core.PriorityHigh,
			Assigned: core.DatePtr(today),
			Goals:    "Polish hero; improve CLS; add A/B test for CTA.\nTarget ship: 09/15/2025",
			Notes:    "Kickoff 08/10/2025\nQA window: 09/10/2025–09/14/2025",
		},
		{
			ID:       uuid.NewString(),
			Name:     "Ops Runbook",
			Status:   core.StatusNotStarted,
			Priority: core.PriorityMedium,
			Goals:    "Document on-call rotations, playbooks, and escalation.\nDue 08/31/2025",
			Notes:    "Ask SRE for latest pager policy by 08/20/2025.",
		},
		{
			ID:        uuid.NewString(),
			Name:      "Refactor Auth",
			Status:    core.StatusCompleted,
			Priority:  core.PriorityUrgent,
			Assigned:  core.DatePtr(core.Date{Year: 2025, Month: 7, Day: 1}),
			Completed: core.DatePtr(core.Date{Year: 2025, Month: 8, Day: 1}),
			Goals:     "Replace legacy tokens; add refresh flow; rotate keys.",
			Notes:     "Backfilled tests on 07/20/2025. Retro on 08/05/2025.",
		},
	}
}

// NoSeed starts first-run stores with an empty collection.
func NoSeed(core.Date) []core.Record { return nil }
