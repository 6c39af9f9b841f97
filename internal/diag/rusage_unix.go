//go:build unix

package diag

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// MaxRSSKB returns the process's peak resident set size in KiB, reported
// next to heap.Stats in `pycore stats` so a host can compare VM-reported
// heap occupancy against actual OS memory use (grounded on hive/dirty's
// use of golang.org/x/sys/unix for OS-facing syscalls).
func MaxRSSKB() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return -1
	}
	// Linux reports ru_maxrss in KiB already; Darwin reports bytes.
	if runtime.GOOS == "darwin" {
		return int64(ru.Maxrss) / 1024
	}
	return int64(ru.Maxrss)
}
