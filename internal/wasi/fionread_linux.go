package wasi

import (
	"golang.org/x/sys/unix"
)

// pendingBytes returns the bytes available to read from fd, or zero if
// unknown.
func pendingBytes(fd int) uint64 {
	// TIOCINQ is FIONREAD on linux
	n, err := unix.IoctlGetInt(fd, unix.TIOCINQ)
	if err != nil || n < 0 {
		return 0
	}
	return uint64(n)
}
