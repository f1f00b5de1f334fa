package tally_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/pkg/core"
)

// Example_basic opens a new project file, edits it and lets autosave commit.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "tally-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	clock := tally.NewManualClock(time.Date(2025, 8, 14, 9, 0, 0, 0, time.UTC))
	path := filepath.Join(tmpDir, "projects.json")

	store, err := tally.Open(ctx, path,
		tally.WithScheduler(clock),
		tally.WithSeed(func(core.Date) []core.Record { return nil }),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close(ctx)

	rec, err := store.Add(tally.Record{Name: "Ops Runbook"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("dirty:", store.IsDirty())

	clock.Advance(tally.DefaultDelay)
	fmt.Println("dirty:", store.IsDirty())

	reopened, err := tally.Open(ctx, path, tally.WithReadOnly(true))
	if err != nil {
		log.Fatal(err)
	}
	defer reopened.Discard()
	got, _ := reopened.Find(rec.ID)
	fmt.Println(got.Name, got.Status.Label())
	// Output:
	// dirty: true
	// dirty: false
	// Ops Runbook Not Started
}
