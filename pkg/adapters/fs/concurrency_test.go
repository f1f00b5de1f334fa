package fs_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tally/pkg/adapters/fs"
)

// TestConcurrentCommits verifies that commits racing on one repository are
// serialized: each one lands whole and none is mistaken for an external edit.
func TestConcurrentCommits(t *testing.T) {
	repo, path := newRepo(t, "projects.json")
	ctx := context.Background()
	require.NoError(t, repo.Commit(ctx, sampleDoc("seed")))

	var wg sync.WaitGroup
	start := make(chan struct{})
	concurrency := 8

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			<-start
			if err := repo.Commit(ctx, sampleDoc(fmt.Sprintf("writer-%d", id))); err != nil {
				t.Errorf("routine %d: failed to commit: %v", id, err)
			}
		}(i)
	}

	close(start)
	wg.Wait()

	doc, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Records, 1)
	assert.Regexp(t, `^writer-\d$`, doc.Records[0].Name)

	_, err = os.Stat(fs.TempPath(path))
	assert.True(t, os.IsNotExist(err), "no temp file is left behind")
	assert.Equal(t, concurrency+1, repo.State().(fs.RepositoryState).Commits)
}
