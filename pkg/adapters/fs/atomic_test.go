package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCommitFile(t *testing.T) {
	t.Run("Creates New File Without Backup", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "projects.json")

		if err := commitFile(filename, []byte("A"), 0644, nil); err != nil {
			t.Fatalf("commitFile failed: %v", err)
		}

		got, err := os.ReadFile(filename)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if string(got) != "A" {
			t.Errorf("Expected content 'A', got '%s'", string(got))
		}
		if _, err := os.Stat(BackupPath(filename)); !os.IsNotExist(err) {
			t.Errorf("Expected no backup on first commit, stat err: %v", err)
		}
		if _, err := os.Stat(TempPath(filename)); !os.IsNotExist(err) {
			t.Errorf("Expected temp file to be promoted, stat err: %v", err)
		}
	})

	t.Run("Backup Holds Previous Content", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "projects.json")

		if err := commitFile(filename, []byte("A"), 0644, nil); err != nil {
			t.Fatal(err)
		}
		if err := commitFile(filename, []byte("B"), 0644, nil); err != nil {
			t.Fatal(err)
		}

		canonical, _ := os.ReadFile(filename)
		backup, _ := os.ReadFile(BackupPath(filename))
		if string(canonical) != "B" || string(backup) != "A" {
			t.Errorf("Expected canonical=B backup=A, got canonical=%q backup=%q", canonical, backup)
		}

		if err := commitFile(filename, []byte("C"), 0644, nil); err != nil {
			t.Fatal(err)
		}
		backup, _ = os.ReadFile(BackupPath(filename))
		if string(backup) != "B" {
			t.Errorf("Expected backup depth of one (B), got %q", backup)
		}
	})

	t.Run("Overwrites Stale Temp File", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "projects.json")
		if err := os.WriteFile(TempPath(filename), []byte("garbage from a crashed commit, longer than new data"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := commitFile(filename, []byte("fresh"), 0644, nil); err != nil {
			t.Fatalf("commitFile failed: %v", err)
		}
		got, _ := os.ReadFile(filename)
		if string(got) != "fresh" {
			t.Errorf("Expected 'fresh', got %q", got)
		}
	})

	t.Run("Refused Rename Leaves Canonical Intact", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "projects.json")
		if err := commitFile(filename, []byte("A"), 0644, nil); err != nil {
			t.Fatal(err)
		}

		orig := replaceFile
		replaceFile = func(src, dst string) error { return errors.New("rename refused") }
		defer func() { replaceFile = orig }()

		if err := commitFile(filename, []byte("B"), 0644, nil); err == nil {
			t.Fatal("Expected error from refused rename")
		}

		got, _ := os.ReadFile(filename)
		if string(got) != "A" {
			t.Errorf("Canonical must stay 'A', got %q", got)
		}
	})

	t.Run("Verify Rejection Writes Nothing Visible", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "projects.json")
		if err := commitFile(filename, []byte("A"), 0644, nil); err != nil {
			t.Fatal(err)
		}

		reject := func(current []byte, exists bool) error {
			if !exists || string(current) != "A" {
				t.Errorf("verify got exists=%v current=%q", exists, current)
			}
			return errors.New("conflict")
		}
		if err := commitFile(filename, []byte("B"), 0644, reject); err == nil {
			t.Fatal("Expected verify error")
		}

		got, _ := os.ReadFile(filename)
		if string(got) != "A" {
			t.Errorf("Canonical must stay 'A', got %q", got)
		}
		if _, err := os.Stat(BackupPath(filename)); !os.IsNotExist(err) {
			t.Errorf("Backup must not be touched by an aborted commit")
		}
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "missing_folder", "projects.json")

		if err := commitFile(filename, []byte("fail"), 0644, nil); err == nil {
			t.Error("Expected error when directory is missing, got nil")
		}
	})
}
