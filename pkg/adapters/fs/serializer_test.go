package fs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tally/pkg/adapters/fs"
	"github.com/aretw0/tally/pkg/core"
)

func TestSerializerFor(t *testing.T) {
	tests := []struct {
		path string
		want any
	}{
		{"projects.json", &fs.JSONSerializer{}},
		{"projects.YAML", &fs.YAMLSerializer{}},
		{"projects.yml", &fs.YAMLSerializer{}},
		{"projects", &fs.JSONSerializer{}},
		{"", &fs.JSONSerializer{}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.IsType(t, tt.want, fs.SerializerFor(tt.path))
		})
	}
}

func TestSerializers_AgreeOnContent(t *testing.T) {
	doc := sampleDoc("Landing Page Revamp", "Ops Runbook")
	doc.Records[1].Completed = core.DatePtr(core.Date{Year: 2025, Month: 8, Day: 2})
	doc.Records[1].Notes = "Kickoff 08/10/2025\nQA window: 09/10/2025–09/14/2025"

	for ext, s := range fs.DefaultSerializers() {
		t.Run(ext, func(t *testing.T) {
			data, err := s.Encode(doc)
			require.NoError(t, err)
			got, err := s.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, doc, got)
		})
	}
}

func TestSerializers_NullDates(t *testing.T) {
	yamlDoc := "version: 1\nrecords:\n  - id: a\n    name: A\n    status: not_started\n    priority: low\n    date_assigned: \"\"\n    date_completed: null\n"
	got, err := fs.NewYAMLSerializer().Decode([]byte(yamlDoc))
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	assert.Nil(t, got.Records[0].Assigned)
	assert.Nil(t, got.Records[0].Completed)
	assert.Equal(t, core.SchemaVersion, got.Version)
}
