//go:build windows

package filesystem

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// replaceFile moves tmpPath over dest and returns once the move is on disk.
// os.Rename does not pass MOVEFILE_WRITE_THROUGH, and directories cannot be fsynced here.
func replaceFile(tmpPath, dest string) error {
	from, err := windows.UTF16PtrFromString(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "replace %s", dest)
	}
	to, err := windows.UTF16PtrFromString(dest)
	if err != nil {
		return errors.Wrapf(err, "replace %s", dest)
	}
	if err := windows.MoveFileEx(from, to, windows.MOVEFILE_REPLACE_EXISTING|windows.MOVEFILE_WRITE_THROUGH); err != nil {
		return errors.Wrapf(err, "replace %s", dest)
	}
	return nil
}
