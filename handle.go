package iopoll

import (
	"strconv"
	"sync/atomic"
)

// Handle is a raw OS handle: a file descriptor on unix and WASI, or a SOCKET
// on Windows. It matches the value passed to [syscall.RawConn.Control].
type Handle uintptr

func (h Handle) String() string {
	return `Handle(` + strconv.FormatUint(uint64(h), 10) + `)`
}

// selectorIDs hands out process-unique selector identities, used to detect a
// source being used with the wrong [Poll].
var selectorIDs atomic.Uint64

func nextSelectorID() uint64 {
	return selectorIDs.Add(1)
}
