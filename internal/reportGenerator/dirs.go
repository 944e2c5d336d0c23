package reportGenerator

import (
	"os"
	"path/filepath"
)

// Dirs holds the resolved output subdirectories for one run.
type Dirs struct {
	Base   string
	CSV    string
	JSON   string
	Merged string
	XLSX   string
}

// EnsureDirs creates the output directory layout under base and returns the
// resolved paths. Called once by the entrypoint before any file is written.
func EnsureDirs(base string) (Dirs, error) {
	dirs := Dirs{
		Base:   base,
		CSV:    filepath.Join(base, "CSV"),
		JSON:   filepath.Join(base, "JSONs"),
		Merged: filepath.Join(base, "JSONs", "merged"),
		XLSX:   filepath.Join(base, "XLSX"),
	}

	for _, dir := range []string{dirs.CSV, dirs.JSON, dirs.Merged, dirs.XLSX} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Dirs{}, err
		}
	}
	return dirs, nil
}
