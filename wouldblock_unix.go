//go:build unix

package iopoll

import (
	"errors"
	"syscall"
)

func isWouldBlock(err error) bool {
	return err != nil && (errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK))
}

func isRetryable(err error) bool {
	return err != nil && errors.Is(err, syscall.EINTR)
}
