//go:build windows

package iopoll

import (
	"errors"

	"golang.org/x/sys/windows"
)

func isWouldBlock(err error) bool {
	return err != nil && errors.Is(err, windows.WSAEWOULDBLOCK)
}

func isRetryable(err error) bool {
	return err != nil && errors.Is(err, windows.WSAEINTR)
}
