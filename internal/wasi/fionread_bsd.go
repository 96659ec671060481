//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package wasi

import (
	"golang.org/x/sys/unix"
)

// fionread is _IOR('f', 127, int), the same on every BSD.
const fionread = 0x4004667f

// pendingBytes returns the bytes available to read from fd, or zero if
// unknown.
func pendingBytes(fd int) uint64 {
	n, err := unix.IoctlGetInt(fd, fionread)
	if err != nil || n < 0 {
		return 0
	}
	return uint64(n)
}
