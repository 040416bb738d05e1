//go:build !linux

package scanner

import "os"

// hasOpenWriter is a no-op on platforms without /proc. This is a
// documented capability downgrade: the scanner falls back to the
// modification-time window as its sole stability signal.
func hasOpenWriter(path string, info os.FileInfo) (bool, int, error) {
	return false, 0, nil
}
