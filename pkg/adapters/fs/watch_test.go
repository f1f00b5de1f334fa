package fs_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tally/pkg/core"
)

func TestWatch_ReportsExternalEditsOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, path := newRepo(t, "projects.json")
	require.NoError(t, repo.Commit(ctx, sampleDoc("A")))

	events, err := repo.Watch(ctx)
	require.NoError(t, err)

	// Own commits are not external changes.
	require.NoError(t, repo.Commit(ctx, sampleDoc("A", "B")))
	select {
	case e := <-events:
		t.Fatalf("unexpected event after own commit: %v", e)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte(`{"records":[]}`), 0644))

	select {
	case e := <-events:
		assert.Equal(t, core.EventExternalChange, e.Type)
		assert.Equal(t, path, e.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for external change event")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond, "events channel should close on cancel")
}
