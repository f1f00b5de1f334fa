package core

// Status is the lifecycle state of a record.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
	StatusOnHold     Status = "on_hold"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusCompleted, StatusBlocked, StatusOnHold}

var statusLabels = map[Status]string{
	StatusNotStarted: "Not Started",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
	StatusBlocked:    "Blocked",
	StatusOnHold:     "On Hold",
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human readable name of the status.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Priority ranks how urgent a record is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

var priorityLabels = map[Priority]string{
	PriorityLow:    "Low",
	PriorityMedium: "Medium",
	PriorityHigh:   "High",
	PriorityUrgent: "Urgent",
}

func (p Priority) Valid() bool {
	_, ok := priorityLabels[p]
	return ok
}

func (p Priority) Label() string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return string(p)
}

// DefaultName is used for records saved without a name.
const DefaultName = "Untitled Project"

// Record is one tracked unit of work.
// The ID is assigned once at creation and never changes afterwards.
type Record struct {
	ID        string   `json:"id" yaml:"id" validate:"required"`
	Name      string   `json:"name" yaml:"name" validate:"required"`
	Status    Status   `json:"status" yaml:"status" validate:"oneof=not_started in_progress completed blocked on_hold"`
	Priority  Priority `json:"priority" yaml:"priority" validate:"oneof=low medium high urgent"`
	Assigned  *Date    `json:"date_assigned" yaml:"date_assigned"`
	Completed *Date    `json:"date_completed" yaml:"date_completed"`
	Goals     string   `json:"goals" yaml:"goals"`
	Notes     string   `json:"notes" yaml:"notes"`
}

// NewRecord returns a record with the defaults used for freshly created entries.
func NewRecord(id, name string) Record {
	return Record{
		ID:       id,
		Name:     name,
		Status:   StatusNotStarted,
		Priority: PriorityMedium,
	}
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	c := r
	if r.Assigned != nil {
		d := *r.Assigned
		c.Assigned = &d
	}
	if r.Completed != nil {
		d := *r.Completed
		c.Completed = &d
	}
	return c
}

// Normalize repairs values that editors are allowed to get wrong.
// A completed date earlier than the assigned date is clamped to the assigned
// date, and a blank name falls back to DefaultName. It never rejects.
func (r *Record) Normalize() {
	if r.Name == "" {
		r.Name = DefaultName
	}
	if r.Assigned != nil && r.Completed != nil && r.Completed.Before(*r.Assigned) {
		d := *r.Assigned
		r.Completed = &d
	}
}
