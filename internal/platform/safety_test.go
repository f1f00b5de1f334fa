package platform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/tally/internal/platform"
)

func TestResolvePath(t *testing.T) {
	t.Parallel()

	tempRoot := os.TempDir()
	devBase := filepath.Join(tempRoot, platform.SandboxDir)

	tests := []struct {
		name      string
		userPath  string
		forceTemp bool
		expected  string
	}{
		{
			name:     "Normal Mode - Relative File",
			userPath: "projects.json",
			expected: "projects.json",
		},
		{
			name:     "Normal Mode - Absolute File",
			userPath: "/some/path/projects.yaml",
			expected: "/some/path/projects.yaml",
		},
		{
			name:      "Scratch Stays Scratch",
			userPath:  "",
			forceTemp: true,
			expected:  "",
		},
		{
			name:      "Dev Mode - Relative File",
			userPath:  "work/projects.json",
			forceTemp: true,
			expected:  filepath.Join(devBase, "projects.json"),
		},
		{
			name:      "Dev Mode - Traversal Is Flattened",
			userPath:  "../bad/tracker.yml",
			forceTemp: true,
			expected:  filepath.Join(devBase, "tracker.yml"),
		},
		{
			name:      "Dev Mode - Current Dir",
			userPath:  ".",
			forceTemp: true,
			expected:  filepath.Join(devBase, platform.DefaultFileName),
		},
		{
			name:      "Dev Mode - Exception for Temp Dir",
			userPath:  filepath.Join(tempRoot, "my-test", "projects.json"),
			forceTemp: true,
			expected:  filepath.Join(tempRoot, "my-test", "projects.json"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := platform.ResolvePath(tt.userPath, tt.forceTemp)
			if got != tt.expected {
				t.Errorf("ResolvePath(%q, %v) = %q; want %q", tt.userPath, tt.forceTemp, got, tt.expected)
			}
		})
	}
}

func TestIsDevRun(t *testing.T) {
	// This test runs inside "go test", so IsDevRun() MUST return true.
	if !platform.IsDevRun() {
		t.Errorf("IsDevRun() = false; want true inside go test")
	}
}
