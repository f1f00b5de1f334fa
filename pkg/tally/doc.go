// Package tally is the persistence engine of the project tracker.
//
// A Store holds the ordered record collection in memory. Each edit marks it
// dirty and restarts a short delay; when the delay expires the whole document
// is committed through a core.Repository, which for the filesystem adapter
// means temp file, backup of the previous canonical file, then an atomic
// rename. Collaborators follow along through Subscribe or Events.
package tally
