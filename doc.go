// Package tally is the composition root of the project tracker's storage
// engine.
//
// A store keeps an ordered list of project records in memory and persists
// the whole list to one JSON or YAML file. Edits are coalesced: the file is
// committed once, a short delay after the last edit. Every commit is atomic:
//
//  1. the new content is written and synced to "<file>.tmp";
//  2. the current file is copied to "<file>.bak";
//  3. "<file>.tmp" is renamed over the file.
//
// A crash at any point leaves either the old or the new file under the
// canonical name, never a mix. Free-text snapshots go to ".history/" next to
// the file and never overwrite each other.
//
// Usage:
//
//	store, err := tally.Open(ctx, "projects.json", tally.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer store.Close(ctx)
//
//	rec, err := store.Add(tally.Record{Name: "Landing Page Revamp"})
//	...
//	err = store.Start(rec.ID)
package tally
