package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the canonical file name used when none is configured.
const DefaultFileName = "projects.json"

// CanonicalNames are the file names FindCanonical looks for, in order.
var CanonicalNames = []string{DefaultFileName, "projects.yaml", "projects.yml"}

// FindCanonical looks upwards from startDir for a directory holding one of
// CanonicalNames and returns the absolute path of that file.
func FindCanonical(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, name := range CanonicalNames {
			if hasFile(dir, name) {
				return filepath.Join(dir, name), nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no canonical file found above %s", abs)
}

func hasFile(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}
