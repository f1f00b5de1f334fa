package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// SandboxDir is the directory under os.TempDir that development runs use.
const SandboxDir = "tally-dev"

// IsDevRun checks if the current process is running via `go run` or `go test`.
// It relies on the fact that these commands build binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	tempDir := os.TempDir()
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(tempDir)) {
		return true
	}

	if strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe") {
		return true
	}

	return false
}

// ResolvePath determines the canonical file actually used.
// When forceTemp is set, a path outside the system temp directory is
// re-rooted into the sandbox, keeping only its file name. An empty path
// stays empty: it denotes a store that has not been saved yet.
func ResolvePath(userPath string, forceTemp bool) string {
	if userPath == "" || !forceTemp {
		return userPath
	}

	clean := filepath.Clean(userPath)
	rel, err := filepath.Rel(os.TempDir(), clean)
	if err == nil && !strings.HasPrefix(rel, "..") {
		return clean
	}

	name := filepath.Base(clean)
	if name == "." || name == string(os.PathSeparator) {
		name = DefaultFileName
	}
	return filepath.Join(os.TempDir(), SandboxDir, name)
}
