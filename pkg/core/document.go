package core

import "time"

// SchemaVersion is the only on-disk schema version this module reads and writes.
const SchemaVersion = 1

// Meta carries bookkeeping timestamps of a persisted document.
type Meta struct {
	Created      time.Time  `json:"created" yaml:"created"`
	LastModified *time.Time `json:"last_modified" yaml:"last_modified"`
}

// Document is the full persisted state of a store: the schema version,
// metadata and the ordered record collection.
type Document struct {
	Version int      `json:"version" yaml:"version"`
	Meta    Meta     `json:"meta" yaml:"meta"`
	Records []Record `json:"records" yaml:"records"`
}

// NewDocument returns an empty document created at now.
func NewDocument(now time.Time) Document {
	return Document{
		Version: SchemaVersion,
		Meta:    Meta{Created: now.UTC()},
		Records: []Record{},
	}
}

// Clone returns a deep copy, safe to serialize while the original keeps changing.
func (d Document) Clone() Document {
	c := d
	if d.Meta.LastModified != nil {
		t := *d.Meta.LastModified
		c.Meta.LastModified = &t
	}
	c.Records = make([]Record, len(d.Records))
	for i, r := range d.Records {
		c.Records[i] = r.Clone()
	}
	return c
}

// Sanitize drops empty optional dates left behind by lenient decoding and
// fills in a missing version.
func (d *Document) Sanitize() {
	if d.Version == 0 {
		d.Version = SchemaVersion
	}
	if d.Records == nil {
		d.Records = []Record{}
	}
	for i := range d.Records {
		r := &d.Records[i]
		if r.Assigned != nil && r.Assigned.IsZero() {
			r.Assigned = nil
		}
		if r.Completed != nil && r.Completed.IsZero() {
			r.Completed = nil
		}
	}
}
