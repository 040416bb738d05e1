//go:build linux

package scanner

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// hasOpenWriter inspects /proc to find a process with path open in a
// write-capable mode. It returns the first such pid found. Errors reading
// /proc (permission denied, process exited mid-scan) are treated as "no
// writer found" rather than propagated, since /proc is inherently racy and
// a best-effort scan is all the invariant requires.
func hasOpenWriter(path string, info os.FileInfo) (bool, int, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false, 0, nil
	}

	procEntries, err := os.ReadDir("/proc")
	if err != nil {
		return false, 0, nil
	}

	for _, procEntry := range procEntries {
		pid, err := strconv.Atoi(procEntry.Name())
		if err != nil {
			continue
		}

		fdDir := filepath.Join("/proc", procEntry.Name(), "fd")
		fdEntries, err := os.ReadDir(fdDir)
		if err != nil {
			continue
		}

		for _, fdEntry := range fdEntries {
			target, err := os.Readlink(filepath.Join(fdDir, fdEntry.Name()))
			if err != nil {
				continue
			}

			var targetStat syscall.Stat_t
			if err := syscall.Stat(target, &targetStat); err != nil {
				continue
			}
			if targetStat.Dev != stat.Dev || targetStat.Ino != stat.Ino {
				continue
			}

			if isWriteMode(procEntry.Name(), fdEntry.Name()) {
				return true, pid, nil
			}
		}
	}

	return false, 0, nil
}

// isWriteMode reports whether the fd's open flags (from fdinfo) include a
// write-capable access mode.
func isWriteMode(pid, fd string) bool {
	f, err := os.Open(filepath.Join("/proc", pid, "fdinfo", fd))
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "flags:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return false
		}
		flags, err := strconv.ParseInt(fields[1], 8, 64)
		if err != nil {
			return false
		}
		accMode := flags & syscall.O_ACCMODE
		return accMode == syscall.O_WRONLY || accMode == syscall.O_RDWR
	}
	return false
}
