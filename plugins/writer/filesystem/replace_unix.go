//go:build !windows

package filesystem

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// replaceFile renames tmpPath over dest, then fsyncs the parent so the new entry survives a
// crash. The rename is atomic within one filesystem; the parent sync is best effort.
func replaceFile(tmpPath, dest string) error {
	if err := os.Rename(tmpPath, dest); err != nil {
		return errors.Wrapf(err, "replace %s", dest)
	}
	if d, err := os.Open(filepath.Dir(dest)); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
