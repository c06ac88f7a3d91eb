//go:build unix

package locator

import (
	"os"

	"golang.org/x/sys/unix"
)

func isExecutable(path string, info os.FileInfo) bool {
	if info == nil || !info.Mode().IsRegular() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}
