package convert

import (
	"fmt"
	"os"

	"esdemedia/internal/fileutil"
)

// KeepSmaller installs whichever of candidate and original is smaller at
// dest; a tie keeps the candidate. It reports whether the candidate won and
// the size of what was installed.
func KeepSmaller(candidate, original, dest string) (bool, int64, error) {
	candSize, ok := fileutil.FileSize(candidate)
	if !ok {
		return false, 0, fmt.Errorf("candidate %s missing", candidate)
	}
	origSize, ok := fileutil.FileSize(original)
	if !ok {
		return false, 0, fmt.Errorf("original %s missing", original)
	}

	if candSize <= origSize {
		if err := Install(candidate, dest); err != nil {
			return false, 0, err
		}
		return true, candSize, nil
	}
	if err := fileutil.CopyFile(original, dest); err != nil {
		return false, 0, err
	}
	return false, origSize, nil
}

// Install moves a finished artifact to dest, copying when a rename is not
// possible.
func Install(artifact, dest string) error {
	if err := os.MkdirAll(parentDir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}
	if err := os.Rename(artifact, dest); err == nil {
		return nil
	}
	if err := fileutil.CopyFile(artifact, dest); err != nil {
		return fmt.Errorf("install %s: %w", dest, err)
	}
	_ = os.Remove(artifact)
	return nil
}
