//go:build wasip1

package iopoll

import (
	"errors"
	"syscall"
)

// WASI has no separate EWOULDBLOCK.
func isWouldBlock(err error) bool {
	return err != nil && errors.Is(err, syscall.EAGAIN)
}

func isRetryable(err error) bool {
	return err != nil && errors.Is(err, syscall.EINTR)
}
