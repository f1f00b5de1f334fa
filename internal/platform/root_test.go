package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindCanonical(t *testing.T) {
	// baseDir/
	//   repo/ (projects.yaml)
	//     subdir/
	//       nested/
	//   empty/
	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	subDir := filepath.Join(repoDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(emptyDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(repoDir, "projects.yaml"), []byte("version: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// A directory with a canonical name is not a match.
	if err := os.Mkdir(filepath.Join(subDir, DefaultFileName), 0755); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(repoDir, "projects.yaml")
	tests := []struct {
		name      string
		startPath string
		wantPath  string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: repoDir, wantPath: want},
		{name: "Start in Subdir", startPath: subDir, wantPath: want},
		{name: "Start Nested Deeply", startPath: nestedDir, wantPath: want},
		{name: "No File Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindCanonical(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindCanonical() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != "" && filepath.Clean(got) != filepath.Clean(tt.wantPath) {
				t.Errorf("FindCanonical() = %v, want %v", got, tt.wantPath)
			}
		})
	}
}
