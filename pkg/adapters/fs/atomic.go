package fs

import (
	"bytes"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

const (
	// TempSuffix is appended to the canonical path for the transient write target.
	TempSuffix = ".tmp"
	// BackupSuffix is appended to the canonical path for the previous canonical content.
	BackupSuffix = ".bak"
)

// replaceFile promotes the temp file onto the canonical name.
// It is a variable so tests can simulate a refused rename.
var replaceFile = atomic.ReplaceFile

// TempPath returns the transient write target for a canonical path.
func TempPath(canonical string) string {
	return canonical + TempSuffix
}

// BackupPath returns the backup slot for a canonical path.
func BackupPath(canonical string) string {
	return canonical + BackupSuffix
}

// commitFile replaces canonical with data without ever exposing a partially
// written canonical file:
//
//  1. data is written and synced to canonical.tmp (same directory, so the
//     final step is a rename and not a copy);
//  2. the bytes currently under canonical, if any, are passed to verify and
//     then copied into canonical.bak;
//  3. canonical.tmp is renamed onto canonical.
//
// Any error aborts before step 3 completes and leaves canonical untouched.
func commitFile(canonical string, data []byte, perm os.FileMode, verify func(current []byte, exists bool) error) error {
	tmp := TempPath(canonical)

	if err := writeTemp(tmp, data, perm); err != nil {
		return err
	}
	defer os.Remove(tmp) // no-op once promoted

	current, err := os.ReadFile(canonical)
	exists := err == nil
	if err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return fmt.Errorf("failed to read current canonical file: %w", err)
	}

	if verify != nil {
		if err := verify(current, exists); err != nil {
			return err
		}
	}

	if exists {
		bak := BackupPath(canonical)
		if err := atomic.WriteFile(bak, bytes.NewReader(current)); err != nil {
			return fmt.Errorf("failed to write backup %s: %w", bak, err)
		}
		if err := os.Chmod(bak, perm); err != nil {
			return fmt.Errorf("failed to chmod backup: %w", err)
		}
	}

	if err := replaceFile(tmp, canonical); err != nil {
		return fmt.Errorf("failed to promote temp file to %s: %w", canonical, err)
	}

	syncDir(filepath.Dir(canonical))
	return nil
}

// writeTemp writes data to name, truncating leftovers of an aborted commit,
// and syncs it to stable storage before closing.
func writeTemp(name string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	return nil
}

// syncDir flushes the directory entry after a rename. Best effort: some
// platforms cannot open directories for syncing.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
