//go:build unix || wasip1

package iopoll

import (
	"syscall"
)

// fileID identifies the open file behind a descriptor. Descriptor numbers are
// reused once closed, the identity is not. The zero value is unknown.
type fileID struct {
	dev uint64
	ino uint64
}

func statFileID(fd int) fileID {
	var st syscall.Stat_t
	if err := syscall.Fstat(fd, &st); err != nil {
		return fileID{}
	}
	return fileID{dev: uint64(st.Dev), ino: uint64(st.Ino)}
}

// replacedSince reports whether fd no longer refers to the file recorded at
// registration, i.e. it was closed without being deregistered. With nothing
// recorded, the answer is always false.
func (x fileID) replacedSince(fd int) bool {
	if x == (fileID{}) {
		return false
	}
	return statFileID(fd) != x
}
