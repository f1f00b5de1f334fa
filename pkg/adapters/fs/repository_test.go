package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tally/pkg/adapters/fs"
	"github.com/aretw0/tally/pkg/core"
)

func sampleDoc(names ...string) core.Document {
	doc := core.NewDocument(time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC))
	for i, n := range names {
		r := core.NewRecord(string(rune('a'+i)), n)
		r.Goals = "line one\nline two"
		r.Assigned = core.DatePtr(core.Date{Year: 2025, Month: 7, Day: 1})
		doc.Records = append(doc.Records, r)
	}
	return doc
}

func newRepo(t *testing.T, name string) (*fs.Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	return fs.NewRepository(fs.Config{Path: path}), path
}

func TestRepository_LoadMissingIsNotFound(t *testing.T) {
	repo, _ := newRepo(t, "projects.json")

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.False(t, errors.Is(err, core.ErrParse))
}

func TestRepository_LoadMalformedIsParseFailure(t *testing.T) {
	repo, path := newRepo(t, "projects.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrParse)

	raw, _ := os.ReadFile(path)
	assert.Equal(t, "{not json", string(raw), "load must never rewrite user data")
}

func TestRepository_LoadRejectsNewerSchema(t *testing.T) {
	repo, path := newRepo(t, "projects.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 7, "records": []}`), 0644))

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, core.ErrParse)
}

func TestRepository_LoadLegacyProjectsKey(t *testing.T) {
	repo, path := newRepo(t, "projects.json")
	legacy := `{
  "version": 1,
  "meta": {"created": "2025-08-01T10:00:00Z", "last_modified": null},
  "projects": [
    {"id": "x1", "name": "Ops Runbook", "status": "not_started", "priority": "medium",
     "date_assigned": null, "date_completed": null, "goals": "", "notes": "Ask SRE"}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, "Ops Runbook", doc.Records[0].Name)
	assert.Nil(t, doc.Meta.LastModified)
}

func TestRepository_RoundTrip(t *testing.T) {
	for _, name := range []string{"projects.json", "projects.yaml"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo, path := newRepo(t, name)

			doc := sampleDoc("Landing Page Revamp", "Ops Runbook", "Refactor Auth")
			doc.Records[1].Assigned = nil
			doc.Records[2].Completed = core.DatePtr(core.Date{Year: 2025, Month: 8, Day: 1})
			doc.Records[2].Notes = "Backfilled tests <b>&</b> retro\n\ttabbed"
			modified := time.Date(2025, 8, 2, 12, 30, 0, 0, time.UTC)
			doc.Meta.LastModified = &modified

			require.NoError(t, repo.Commit(ctx, doc))

			reloaded, err := fs.NewRepository(fs.Config{Path: path}).Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, doc.Version, reloaded.Version)
			assert.Equal(t, doc.Records, reloaded.Records)
			assert.True(t, doc.Meta.Created.Equal(reloaded.Meta.Created))
			require.NotNil(t, reloaded.Meta.LastModified)
			assert.True(t, modified.Equal(*reloaded.Meta.LastModified))
		})
	}
}

func TestRepository_JSONShape(t *testing.T) {
	ctx := context.Background()
	repo, path := newRepo(t, "projects.json")

	doc := sampleDoc("Ops Runbook")
	doc.Records[0].Assigned = nil
	require.NoError(t, repo.Commit(ctx, doc))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"date_assigned": null`)
	assert.Contains(t, string(raw), `"date_completed": null`)
	assert.Contains(t, string(raw), `"records": [`)
	assert.Contains(t, string(raw), `"last_modified": null`)
}

func TestRepository_BackupEqualsPreviousCanonical(t *testing.T) {
	ctx := context.Background()
	repo, path := newRepo(t, "projects.json")

	require.NoError(t, repo.Commit(ctx, sampleDoc("A")))
	contentA, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, repo.Commit(ctx, sampleDoc("A", "B")))
	contentB, err := os.ReadFile(path)
	require.NoError(t, err)

	backup, err := os.ReadFile(fs.BackupPath(path))
	require.NoError(t, err)
	assert.Equal(t, contentA, backup)
	assert.NotEqual(t, contentA, contentB)
}

type failingSerializer struct{ fs.Serializer }

func (failingSerializer) Encode(core.Document) ([]byte, error) {
	return nil, errors.New("encoder exploded")
}

func TestRepository_SerializationFailureLeavesCanonicalIntact(t *testing.T) {
	ctx := context.Background()
	repo, path := newRepo(t, "projects.json")
	require.NoError(t, repo.Commit(ctx, sampleDoc("A")))
	before, _ := os.ReadFile(path)

	broken := fs.NewRepository(fs.Config{Path: path, Serializer: failingSerializer{fs.NewJSONSerializer()}})
	err := broken.Commit(ctx, sampleDoc("A", "B"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrWrite)

	after, _ := os.ReadFile(path)
	assert.Equal(t, before, after)
}

func TestRepository_WriteFailureLeavesCanonicalIntact(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	ctx := context.Background()
	repo, path := newRepo(t, "projects.json")
	require.NoError(t, repo.Commit(ctx, sampleDoc("A")))
	before, _ := os.ReadFile(path)

	dir := filepath.Dir(path)
	require.NoError(t, os.Chmod(dir, 0555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0755) })

	err := repo.Commit(ctx, sampleDoc("A", "B"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrWrite)

	after, _ := os.ReadFile(path)
	assert.Equal(t, before, after)
}

func TestRepository_ConflictDetection(t *testing.T) {
	ctx := context.Background()
	repo, path := newRepo(t, "projects.json")
	require.NoError(t, repo.Commit(ctx, sampleDoc("A")))

	external := []byte(`{"version":1,"meta":{"created":"2025-01-01T00:00:00Z"},"records":[]}`)
	require.NoError(t, os.WriteFile(path, external, 0644))

	err := repo.Commit(ctx, sampleDoc("A", "B"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.ErrorIs(t, err, core.ErrWrite)

	got, _ := os.ReadFile(path)
	assert.Equal(t, external, got, "external edit must survive a refused commit")

	forced := context.WithValue(ctx, core.ForceCommitKey, true)
	require.NoError(t, repo.Commit(forced, sampleDoc("A", "B")))

	backup, _ := os.ReadFile(fs.BackupPath(path))
	assert.Equal(t, external, backup, "forced commit still keeps the overwritten content as backup")

	require.NoError(t, repo.Commit(ctx, sampleDoc("A", "B", "C")), "fingerprint follows own commits")
}

func TestRepository_ConflictWhenFileAppearsAfterNotFound(t *testing.T) {
	ctx := context.Background()
	repo, path := newRepo(t, "projects.json")
	_, err := repo.Load(ctx)
	require.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, os.WriteFile(path, []byte(`{"records":[]}`), 0644))
	assert.ErrorIs(t, repo.Commit(ctx, sampleDoc("A")), core.ErrConflict)
}

func TestRepository_UnguardedIgnoresExternalEdits(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "projects.json")
	repo := fs.NewRepository(fs.Config{Path: path, Unguarded: true})
	require.NoError(t, repo.Commit(ctx, sampleDoc("A")))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	assert.NoError(t, repo.Commit(ctx, sampleDoc("B")))
}

func TestRepository_Relocate(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t, "projects.json")

	target := filepath.Join(t.TempDir(), "elsewhere.yaml")
	moved, err := repo.Relocate(target)
	require.NoError(t, err)
	assert.Equal(t, target, moved.Path())

	require.NoError(t, moved.Commit(ctx, sampleDoc("A")))
	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "records:")

	_, err = repo.Relocate("")
	assert.ErrorIs(t, err, core.ErrNoPath)
}

func TestRepository_EmptyPath(t *testing.T) {
	repo := fs.NewRepository(fs.Config{})
	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, core.ErrNoPath)
	assert.ErrorIs(t, repo.Commit(context.Background(), sampleDoc()), core.ErrNoPath)
}

func TestRepository_State(t *testing.T) {
	repo, path := newRepo(t, "projects.json")
	require.NoError(t, repo.Commit(context.Background(), sampleDoc("A")))

	state, ok := repo.State().(fs.RepositoryState)
	require.True(t, ok)
	assert.Equal(t, path, state.Path)
	assert.Equal(t, path+".bak", state.BackupPath)
	assert.Equal(t, 1, state.Commits)
	assert.NotNil(t, state.LastCommit)
	assert.Equal(t, "repository", repo.ComponentType())
}
