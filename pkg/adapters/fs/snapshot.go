package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/tally/pkg/core"
)

const (
	// HistoryDir is created next to the canonical file to hold snapshots.
	HistoryDir = ".history"
	// FallbackDir holds snapshots taken before any canonical path was chosen.
	FallbackDir = "snapshots"
	// SnapshotLayout stamps snapshot names with second resolution.
	SnapshotLayout = "20060102-150405"

	unsavedStem = "unsaved"
	unsavedExt  = ".txt"
	maxSuffix   = 1000
)

// Snapshotter writes timestamped, never-overwritten copies of editable
// content. Snapshots are recovery artifacts: nothing reads them back.
type Snapshotter struct {
	// Canonical is the canonical file path; empty means not chosen yet.
	Canonical string
	// WorkDir replaces the current working directory for the fallback location.
	WorkDir string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Dir returns the directory snapshots are written to.
func (s *Snapshotter) Dir() (string, error) {
	if s.Canonical != "" {
		return filepath.Join(filepath.Dir(s.Canonical), HistoryDir), nil
	}
	base := s.WorkDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		base = wd
	}
	return filepath.Join(base, FallbackDir), nil
}

func (s *Snapshotter) nameParts() (stem, ext string) {
	if s.Canonical == "" {
		return unsavedStem, unsavedExt
	}
	base := filepath.Base(s.Canonical)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}

func (s *Snapshotter) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Write stores text in a new snapshot file and returns its path.
// Names are <stem>-<timestamp><ext>; a second snapshot within the same second
// gets a numeric suffix instead of replacing the first.
func (s *Snapshotter) Write(text string) (string, error) {
	dir, err := s.Dir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrSnapshot, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create %s: %w", core.ErrSnapshot, dir, err)
	}

	stem, ext := s.nameParts()
	stamp := s.now().Format(SnapshotLayout)

	for n := 0; n < maxSuffix; n++ {
		name := fmt.Sprintf("%s-%s%s", stem, stamp, ext)
		if n > 0 {
			name = fmt.Sprintf("%s-%s-%d%s", stem, stamp, n, ext)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if errors.Is(err, iofs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: %w", core.ErrSnapshot, err)
		}

		if _, err := f.WriteString(text); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("%w: failed to write %s: %w", core.ErrSnapshot, path, err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("%w: failed to sync %s: %w", core.ErrSnapshot, path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("%w: %w", core.ErrSnapshot, err)
		}
		return path, nil
	}

	return "", fmt.Errorf("%w: too many snapshots at %s", core.ErrSnapshot, stamp)
}

// List returns the snapshot files in Dir oldest first, ordered by timestamp
// and then by collision suffix. A non-empty pattern filters base names with
// doublestar syntax (e.g. "projects-2025*").
func (s *Snapshotter) List(pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	dir, err := s.Dir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if pattern != "" {
			ok, err := doublestar.Match(pattern, e.Name())
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sortSnapshots(out)
	return out, nil
}

// stampedName matches "<stem>-<stamp>" with an optional "-N" collision suffix.
var stampedName = regexp.MustCompile(`^(.*-\d{8}-\d{6})(?:-(\d+))?$`)

type snapshotKey struct {
	base string
	n    int
}

func keyOf(path string) snapshotKey {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	m := stampedName.FindStringSubmatch(name)
	if m == nil {
		return snapshotKey{base: name}
	}
	n, _ := strconv.Atoi(m[2])
	return snapshotKey{base: m[1], n: n}
}

// sortSnapshots orders paths by stem and timestamp, then by collision suffix,
// which is the order they were written in.
func sortSnapshots(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		a, b := keyOf(paths[i]), keyOf(paths[j])
		if a.base != b.base {
			return a.base < b.base
		}
		if a.n != b.n {
			return a.n < b.n
		}
		return paths[i] < paths[j]
	})
}
